package service

import (
	"context"
	"testing"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetShopInfoWithoutProfile(t *testing.T) {
	svc := NewShopService(newMemStore())

	_, err := svc.GetShopInfo(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestUpdateName(t *testing.T) {
	store := newMemStore()
	user := store.seedUser("a@shop.test", &entity.Shop{Name: "Old"})
	svc := NewShopService(store)

	_, err := svc.UpdateName(context.Background(), user.Id, &dto.UpdateShopRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidShopName)

	info, err := svc.UpdateName(context.Background(), user.Id, &dto.UpdateShopRequest{Name: "  New Name "})
	require.NoError(t, err)
	assert.Equal(t, "New Name", info.Name)
}

func TestUpdateNotificationEmails(t *testing.T) {
	store := newMemStore()
	user := store.seedUser("a@shop.test", &entity.Shop{Name: "Shop"})
	svc := NewShopService(store)

	info, err := svc.UpdateNotificationEmails(context.Background(), user.Id, &dto.UpdateNotificationEmailsRequest{
		Emails: []string{"Ops@Shop.test", "ops@shop.test ", "billing@shop.test"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@shop.test", "billing@shop.test"}, info.NotificationEmails)

	_, err = svc.UpdateNotificationEmails(context.Background(), user.Id, &dto.UpdateNotificationEmailsRequest{
		Emails: []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@x.io"},
	})
	assert.ErrorIs(t, err, ErrTooManyEmails)

	_, err = svc.UpdateNotificationEmails(context.Background(), user.Id, &dto.UpdateNotificationEmailsRequest{Emails: []string{"nope"}})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestIntegrationLifecycle(t *testing.T) {
	store := newMemStore()
	user := store.seedUser("a@shop.test", &entity.Shop{Name: "Shop"})
	svc := NewShopService(store)
	ctx := context.Background()

	_, err := svc.UpsertIntegration(ctx, user.Id, "carparts", &dto.UpsertIntegrationRequest{ApiKey: "k"})
	assert.ErrorIs(t, err, ErrInvalidIntegration)

	_, err = svc.UpsertIntegration(ctx, user.Id, "partstech", &dto.UpsertIntegrationRequest{ApiKey: "  "})
	assert.ErrorIs(t, err, ErrApiKeyRequired)

	res, err := svc.UpsertIntegration(ctx, user.Id, "PartsTech", &dto.UpsertIntegrationRequest{ApiKey: "pt-secret-9876", StoreId: "store-1"})
	require.NoError(t, err)
	assert.Equal(t, "partstech", res.Provider)
	assert.Equal(t, "••••••••••9876", res.ApiKey)
	require.NotNil(t, res.StoreId)

	_, err = svc.UpsertIntegration(ctx, user.Id, "partstech", &dto.UpsertIntegrationRequest{ApiKey: "pt-rotated-1111"})
	require.NoError(t, err)

	list, err := svc.ListIntegrations(ctx, user.Id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].StoreId)

	require.NoError(t, svc.DeleteIntegration(ctx, user.Id, "partstech"))
	assert.ErrorIs(t, svc.DeleteIntegration(ctx, user.Id, "partstech"), ErrIntegrationNotFound)
}

func TestMaskApiKey(t *testing.T) {
	assert.Equal(t, "••••", maskApiKey("abcd"))
	assert.Equal(t, "•2345", maskApiKey("12345"))
	assert.Equal(t, "", maskApiKey(""))
}
