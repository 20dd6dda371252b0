package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"

	"solomanager/internal/admin"
	"solomanager/internal/api"
	"solomanager/internal/auth"
	"solomanager/internal/config"
	"solomanager/internal/confirm"
	"solomanager/internal/finance"
	"solomanager/internal/logger"
	"solomanager/internal/member"
	"solomanager/internal/notify"
	"solomanager/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type app struct {
	cfg       *config.Config
	session   *session.Store
	auth      *auth.Client
	members   member.Client
	finance   finance.Client
	admin     *admin.Client
	notifier  notify.Notifier
	confirmer confirm.Confirmer
	out       *os.File
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("unexpected failure: %v", r)
			fmt.Fprintln(os.Stderr, "something went wrong, see log output")
			os.Exit(1)
		}
	}()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Infof("Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	apiClient, err := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
	)
	if err != nil {
		logger.Fatalf("Failed to build API client: %v", err)
	}

	a := &app{
		cfg:       cfg,
		session:   session.Open(session.NewFileStorage(cfg.SessionFile)),
		auth:      auth.NewClient(apiClient),
		members:   member.NewClient(apiClient),
		finance:   finance.NewClient(apiClient),
		admin:     admin.NewClient(apiClient),
		notifier:  notify.NewWriter(os.Stderr),
		confirmer: confirm.NewTerminal(os.Stdin, os.Stderr),
		out:       os.Stdout,
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: solomanager <command> [flags]

session:
  login            log in as gym owner
  manager-login    log in as manager
  signup           register a new gym
  verify-otp       confirm the signup OTP
  forgot-password  request a password reset OTP
  reset-password   verify the OTP and set a new password
  logout           drop the stored session
  whoami           print the current identity

members:
  members          paged member list (-page, -filter)
  search           search members by name or roll number
  member           show one member
  add-member       register a member (-photo for an image)
  edit-member      stage field edits and save (-set field=value, -photo)
  expired          members whose subscription has ended
  expiring-soon    members ending within a week

subscriptions:
  subs             a member's subscription history (-filter)
  add-sub          add a subscription
  edit-sub         update a subscription
  del-sub          delete a subscription (asks first)

gym:
  finance          revenue report (-period)
  rename-gym       change the gym name (owner only)
  invite-manager   create a manager account (owner only)`)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args, false)
	case "manager-login":
		return a.cmdLogin(ctx, args, true)
	case "signup":
		return a.cmdSignup(ctx, args)
	case "verify-otp":
		return a.cmdVerifyOTP(ctx, args)
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args)
	case "reset-password":
		return a.cmdResetPassword(ctx, args)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami()
	case "members":
		return a.cmdMembers(ctx, args)
	case "search":
		return a.cmdSearch(ctx, args)
	case "member":
		return a.cmdMember(ctx, args)
	case "add-member":
		return a.cmdAddMember(ctx, args)
	case "edit-member":
		return a.cmdEditMember(ctx, args)
	case "expired":
		return a.cmdExpired(ctx)
	case "expiring-soon":
		return a.cmdExpiringSoon(ctx)
	case "subs":
		return a.cmdSubs(ctx, args)
	case "add-sub":
		return a.cmdAddSub(ctx, args)
	case "edit-sub":
		return a.cmdEditSub(ctx, args)
	case "del-sub":
		return a.cmdDelSub(ctx, args)
	case "finance":
		return a.cmdFinance(ctx, args)
	case "rename-gym":
		return a.cmdRenameGym(ctx, args)
	case "invite-manager":
		return a.cmdInviteManager(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) requireLogin() (session.Identity, error) {
	id, ok := a.session.Current()
	if !ok {
		return session.Identity{}, session.ErrNotAuthenticated
	}
	return id, nil
}

func (a *app) requireRole(roles ...session.Role) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if !a.session.Allowed(roles...) {
		return fmt.Errorf("this command needs one of the roles %v", roles)
	}
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string, manager bool) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		id  *session.Identity
		err error
	)
	if manager {
		id, err = a.auth.ManagerLogin(ctx, *email, *password)
	} else {
		id, err = a.auth.Login(ctx, *email, *password)
	}
	if err != nil {
		return err
	}
	if err := a.session.Login(*id); err != nil {
		return err
	}

	a.notifier.Success("Logged in as " + displayName(*id))
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "owner name")
	email := fs.String("email", "", "account email")
	gym := fs.String("gym", "", "gym name")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, err := a.auth.Signup(ctx, auth.SignupRequest{
		Name:     *name,
		Email:    *email,
		GymName:  *gym,
		Password: *password,
	})
	if err != nil {
		return err
	}

	a.notifier.Success("Signed up, check your email for the OTP")
	return nil
}

func (a *app) cmdVerifyOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify-otp", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	otp := fs.String("otp", "", "one-time code from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.auth.VerifyOTP(ctx, *email, *otp); err != nil {
		return err
	}
	a.notifier.Success("Account verified, you can log in now")
	return nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.auth.RequestPasswordReset(ctx, *email); err != nil {
		return err
	}
	a.notifier.Success("Reset OTP sent to " + *email)
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	otp := fs.String("otp", "", "one-time code from the email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.auth.VerifyResetOTP(ctx, *email, *otp); err != nil {
		return err
	}
	if err := a.auth.ChangePassword(ctx, *email, *otp, *password); err != nil {
		return err
	}
	a.notifier.Success("Password changed")
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	a.notifier.Success("Logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	id, err := a.requireLogin()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\ngym:  %s (%s)\n",
		displayName(id), id.Email, id.Role, id.GymName, id.GymID)
	return nil
}

func (a *app) cmdMembers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("members", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	filter := fs.String("filter", "all", "all, active or inactive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	list := member.NewListController(a.members, a.notifier, member.WithDebounce(a.cfg.SearchDebounce))
	list.SetFilter(ctx, member.Filter(*filter))
	list.SetPage(ctx, *page)

	st := list.Snapshot()
	a.printMembers(st.Members)
	fmt.Fprintf(a.out, "\npage %d of %d, %d members total\n", st.Page, st.TotalPages, st.TotalMembers)
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	filter := fs.String("filter", "all", "all, active or inactive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: search [-filter f] <query>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	// One-shot search, no keystrokes to debounce.
	res, err := a.members.Search(ctx, fs.Arg(0), member.Filter(*filter))
	if err != nil {
		a.notifier.Error("Failed to search members")
		return err
	}

	a.printMembers(res.Members)
	fmt.Fprintf(a.out, "\n%d matches\n", res.TotalMembers)
	return nil
}

func (a *app) cmdMember(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: member <id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	detail := member.NewDetailController(a.members, a.notifier, a.confirmer, nil)
	if err := detail.Load(ctx, args[0]); err != nil {
		return err
	}
	m, _ := detail.Member()
	a.printMember(&m)
	return nil
}

func (a *app) cmdAddMember(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-member", flag.ExitOnError)
	var req member.AddMemberRequest
	fs.StringVar(&req.RollNo, "roll", "", "roll number")
	fs.StringVar(&req.Name, "name", "", "member name")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.IntVar(&req.Age, "age", 0, "age in years")
	fs.StringVar(&req.Gender, "gender", "", "gender")
	fs.Float64Var(&req.Height, "height", 0, "height in cm")
	fs.Float64Var(&req.Weight, "weight", 0, "weight in kg")
	fs.StringVar(&req.Address, "address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	m, err := a.members.AddMember(ctx, req)
	if err != nil {
		return err
	}
	a.notifier.Success("Member added: " + m.Name)
	fmt.Fprintln(a.out, m.ID)
	return nil
}

type setFlags []string

func (s *setFlags) String() string { return fmt.Sprint(*s) }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (a *app) cmdEditMember(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-member", flag.ExitOnError)
	var sets setFlags
	fs.Var(&sets, "set", "field=value, repeatable")
	photo := fs.String("photo", "", "path to a profile image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: edit-member [-set field=value]... [-photo path] <id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	detail := member.NewDetailController(a.members, a.notifier, a.confirmer, nil)
	if err := detail.Load(ctx, fs.Arg(0)); err != nil {
		return err
	}

	for _, kv := range sets {
		field, value, err := splitKeyValue(kv)
		if err != nil {
			return err
		}
		if err := detail.StageEdit(field, value); err != nil {
			return err
		}
	}

	if *photo != "" {
		f, err := os.Open(*photo)
		if err != nil {
			return err
		}
		defer f.Close()
		upload := &api.Upload{Field: "image", Filename: filepath.Base(*photo), Reader: f}
		m, err := detail.CommitWithPhoto(ctx, upload)
		if err != nil {
			return err
		}
		a.printMember(m)
		return nil
	}

	m, err := detail.Commit(ctx)
	if err != nil {
		return err
	}
	a.printMember(m)
	return nil
}

func (a *app) cmdExpired(ctx context.Context) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	members, err := a.members.GetExpired(ctx)
	if err != nil {
		return err
	}
	a.printMembers(members)
	return nil
}

func (a *app) cmdExpiringSoon(ctx context.Context) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	members, err := a.members.GetExpiringSoon(ctx)
	if err != nil {
		return err
	}
	a.printMembers(members)
	return nil
}

func (a *app) cmdSubs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("subs", flag.ExitOnError)
	filter := fs.String("filter", "all", "all, current, upcoming or expired")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: subs [-filter f] <member-id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	subs, err := a.members.GetSubscriptions(ctx, fs.Arg(0), member.SubscriptionFilter(*filter))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLAN\tAMOUNT\tSTART\tEND\tSTATUS")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			s.ID, s.Plan, s.Amount, s.StartDate, s.EndDate, s.Status)
	}
	return w.Flush()
}

func subscriptionFlags(fs *flag.FlagSet, req *member.SubscriptionRequest) {
	fs.Func("plan", "subscription plan", func(v string) error {
		req.Plan = member.Plan(v)
		return nil
	})
	fs.Float64Var(&req.Amount, "amount", 0, "amount paid")
	fs.IntVar(&req.ExtraDays, "extra-days", 0, "bonus days")
	fs.StringVar(&req.StartDate, "start", "", "start date (YYYY-MM-DD), empty for pending")
	fs.Func("status", "Active or Upcoming", func(v string) error {
		req.Status = member.Status(v)
		return nil
	})
}

func (a *app) cmdAddSub(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-sub", flag.ExitOnError)
	var req member.SubscriptionRequest
	subscriptionFlags(fs, &req)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: add-sub [flags] <member-id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	detail := member.NewDetailController(a.members, a.notifier, a.confirmer, nil)
	if err := detail.Load(ctx, fs.Arg(0)); err != nil {
		return err
	}
	return detail.AddSubscription(ctx, req)
}

func (a *app) cmdEditSub(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-sub", flag.ExitOnError)
	var req member.SubscriptionRequest
	subscriptionFlags(fs, &req)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: edit-sub [flags] <member-id> <sub-id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	detail := member.NewDetailController(a.members, a.notifier, a.confirmer, nil)
	if err := detail.Load(ctx, fs.Arg(0)); err != nil {
		return err
	}
	return detail.UpdateSubscription(ctx, fs.Arg(1), req)
}

func (a *app) cmdDelSub(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: del-sub <member-id> <sub-id>")
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	detail := member.NewDetailController(a.members, a.notifier, a.confirmer, nil)
	if err := detail.Load(ctx, args[0]); err != nil {
		return err
	}

	var target *member.Subscription
	subs, err := detail.Subscriptions(ctx, member.SubFilterAll)
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].ID == args[1] {
			target = &subs[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("subscription %s not found on member %s", args[1], args[0])
	}

	deleted, err := detail.DeleteSubscription(ctx, *target)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(a.out, "kept")
	}
	return nil
}

func (a *app) cmdFinance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("finance", flag.ExitOnError)
	period := fs.String("period", string(finance.PeriodCurrentMonth),
		"current_month, last_month, last_6_months or last_year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	ctrl := finance.NewController(a.finance, a.notifier)
	if err := ctrl.SetPeriod(ctx, finance.Period(*period)); err != nil {
		return err
	}

	data := ctrl.Snapshot().Data
	fmt.Fprintf(a.out, "total revenue:   %.2f\n", data.TotalRevenue)
	fmt.Fprintf(a.out, "records:         %d\n", data.Summary.TotalRecords)
	fmt.Fprintf(a.out, "average revenue: %.2f\n", data.Summary.AverageRevenue)
	fmt.Fprintf(a.out, "top plan:        %s (%.2f)\n\n",
		data.HighestRevenuePlan.Plan, data.HighestRevenuePlan.Revenue)

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tMEMBER\tROLL\tPLAN\tAMOUNT")
	for _, row := range data.TableData {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
			row.Date, row.MemberName, row.MemberRollNo, row.Plan, row.Amount)
	}
	return w.Flush()
}

func (a *app) cmdRenameGym(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rename-gym <new-name>")
	}
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}

	if err := a.admin.UpdateGymName(ctx, args[0]); err != nil {
		return err
	}

	id, _ := a.session.Current()
	id.GymName = args[0]
	if err := a.session.UpdateUser(id); err != nil {
		return err
	}

	a.notifier.Success("Gym renamed to " + args[0])
	return nil
}

func (a *app) cmdInviteManager(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("invite-manager", flag.ExitOnError)
	var req admin.InviteManagerRequest
	fs.StringVar(&req.Name, "name", "", "manager name")
	fs.StringVar(&req.Email, "email", "", "manager email")
	fs.StringVar(&req.Password, "password", "", "initial password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}

	if err := a.admin.InviteManager(ctx, req); err != nil {
		return err
	}
	a.notifier.Success("Manager invited: " + req.Email)
	return nil
}

func (a *app) printMembers(members []member.Member) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tNAME\tPHONE\tPLAN\tDAYS LEFT")
	for i := range members {
		m := &members[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.RollNo, m.Name, m.PhoneNumber, m.CurrentPlan(), m.DaysLeft.String())
	}
	w.Flush()
}

func (a *app) printMember(m *member.Member) {
	fmt.Fprintf(a.out, "%s (roll %s)\n", m.Name, m.RollNo)
	fmt.Fprintf(a.out, "phone:      %s\n", m.PhoneNumber)
	if m.Age > 0 {
		fmt.Fprintf(a.out, "age:        %d\n", m.Age)
	}
	if m.Gender != "" {
		fmt.Fprintf(a.out, "gender:     %s\n", m.Gender)
	}
	if m.Address != "" {
		fmt.Fprintf(a.out, "address:    %s\n", m.Address)
	}
	fmt.Fprintf(a.out, "start date: %s\n", m.StartDate)
	fmt.Fprintf(a.out, "plan:       %s\n", m.CurrentPlan())
	fmt.Fprintf(a.out, "days left:  %s\n", m.DaysLeft.String())
}

func displayName(id session.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.Email
}

func splitKeyValue(kv string) (string, string, error) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected field=value, got %q", kv)
}
