package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/shell"
	"simpliparts-be/internal/view"
	"simpliparts-be/pkg/client"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const help = `commands:
  view                         show the current view and session
  go <view>                    navigate (see "views")
  views                        list known views
  login <email> <password>
  signup <first> <last> <shop> <email> <password>
  logout
  forgot <email>
  reset <email> <code> <password> <confirm>
  shop                         show the loaded shop profile
  audit                        run the usage guard before an upload
  billing                      upgrade or manage billing
  feedback <type> <title> | <description>
  menu                         toggle the mobile menu
  quit`

func main() {
	baseURL := flag.String("api", "http://localhost:3000/api", "SimpliParts API base URL")
	initial := flag.String("view", "landing", "initial view")
	logPath := flag.String("log", "logs/shell.log", "log file")
	flag.Parse()

	log := logger.NewIsolatedLogger(*logPath)
	defer log.Sync()

	api := client.New(*baseURL)

	start, err := view.Parse(*initial)
	if err != nil {
		color.Yellow("unknown view %q, starting on landing", *initial)
		start = view.Landing
	}

	inst := shell.NewInstance(uuid.NewString(), start, api, api, api, log)
	defer inst.Close()
	forms := shell.NewForms(inst.Gate, api, api, log)

	inst.Router.OnChange(func(from, to view.View) {
		color.Cyan("→ %s", to)
	})
	inst.Gate.OnShopChange(func(p *shell.ShopProfile) {
		if p != nil {
			color.Green("shop loaded: %s (%s)", p.Name, p.SubscriptionStatus)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := inst.Gate.Mount(ctx); err != nil {
		cancel()
		color.Red("mount failed: %v", err)
		os.Exit(1)
	}
	cancel()

	color.Cyan("SimpliParts shell, type \"help\" for commands")
	printView(inst)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		run(inst, forms, api, line)
	}
}

func run(inst *shell.Instance, forms *shell.Forms, api *client.Client, line string) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	args := strings.Fields(line)
	switch args[0] {
	case "help":
		fmt.Println(help)

	case "view":
		printView(inst)

	case "views":
		for _, v := range view.All() {
			fmt.Printf("  %-18s %s\n", v, v.Class())
		}

	case "go":
		if len(args) != 2 {
			color.Yellow("usage: go <view>")
			return
		}
		v, err := view.Parse(args[1])
		if err != nil {
			color.Red("%v", err)
			return
		}
		inst.Router.Navigate(v)

	case "login":
		if len(args) != 3 {
			color.Yellow("usage: login <email> <password>")
			return
		}
		printErrors(forms.SignIn(ctx, shell.LoginForm{Email: args[1], Password: args[2]}))

	case "signup":
		if len(args) != 6 {
			color.Yellow("usage: signup <first> <last> <shop> <email> <password>")
			return
		}
		printErrors(forms.SignUp(ctx, shell.SignUpForm{
			FirstName: args[1], LastName: args[2], ShopName: args[3], Email: args[4], Password: args[5],
		}))

	case "logout":
		forms.SignOut(ctx)

	case "forgot":
		if len(args) != 2 {
			color.Yellow("usage: forgot <email>")
			return
		}
		errs, _ := forms.ForgotPassword(ctx, args[1])
		if len(errs) == 0 {
			color.Green("If the email is registered, a reset code is on its way.")
		}
		printErrors(errs)

	case "reset":
		if len(args) != 5 {
			color.Yellow("usage: reset <email> <code> <password> <confirm>")
			return
		}
		printErrors(forms.ResetPassword(ctx, shell.ResetPasswordForm{
			Email: args[1], Code: args[2], NewPassword: args[3], ConfirmPassword: args[4],
		}))

	case "shop":
		p := inst.Gate.Shop()
		if p == nil {
			color.Yellow("no shop loaded")
			return
		}
		fmt.Printf("  name:     %s\n  status:   %s\n  credits:  %d\n  notify:   %s\n",
			p.Name, p.SubscriptionStatus, p.FreeCreditsRemaining, strings.Join(p.NotificationEmails, ", "))

	case "audit":
		d := inst.Usage.Check(ctx)
		switch {
		case d.Allowed:
			color.Green("%s", d.Message)
		case d.ShowUpgrade:
			color.Red("%s (try \"billing\")", d.Message)
		default:
			color.Yellow("%s", d.Message)
		}

	case "billing":
		res := inst.Billing.Primary(ctx)
		if !res.OK() {
			color.Red("%s", res.Message)
			return
		}
		color.Green("%s: %s", inst.Billing.Label(), res.URL)

	case "feedback":
		s := inst.Gate.Session()
		if s == nil {
			color.Yellow("sign in first")
			return
		}
		form := parseFeedback(strings.TrimSpace(strings.TrimPrefix(line, "feedback")))
		if errs := form.Validate(); len(errs) > 0 {
			printErrors(errs)
			return
		}
		if err := api.SubmitFeedback(ctx, *s, form); err != nil {
			color.Red("could not send feedback: %v", err)
			return
		}
		color.Green("Thanks for the feedback")

	case "menu":
		inst.SetMobileMenu(!inst.MobileMenuOpen())
		fmt.Printf("  mobile menu open: %v\n", inst.MobileMenuOpen())

	default:
		color.Yellow("unknown command %q, type \"help\"", args[0])
	}
}

// parseFeedback reads "<type> <title> | <description>".
func parseFeedback(rest string) shell.FeedbackForm {
	var form shell.FeedbackForm
	head, desc, _ := strings.Cut(rest, "|")
	form.Description = strings.TrimSpace(desc)
	kind, title, _ := strings.Cut(strings.TrimSpace(head), " ")
	form.Type = kind
	form.Title = strings.TrimSpace(title)
	return form
}

func printView(inst *shell.Instance) {
	who := "signed out"
	if s := inst.Gate.Session(); s != nil {
		who = s.Email
	}
	fmt.Printf("  view: %s (%s), %s\n", inst.Router.Current(), inst.Router.Current().Class(), who)
}

func printErrors(errs shell.FieldErrors) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		color.Red("  %s: %s", k, errs[k])
	}
}
