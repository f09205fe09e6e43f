package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"vows-and-wishes/config"
	"vows-and-wishes/internal/client/appointment"
	"vows-and-wishes/internal/client/availability"
	"vows-and-wishes/internal/client/catalog"
	"vows-and-wishes/internal/client/contact"
	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

func runServices(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("services", cfg)
	category := fs.StringP("category", "c", "", "category, e.g. venues or photographers")
	location := fs.StringP("location", "l", "", "location substring")
	search := fs.StringP("search", "s", "", "name or description substring")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	c := a.newCatalog()
	defer c.Close()

	c.SetCategory(*category)
	c.SetLocation(*location)
	c.SetSearch(*search)
	if err := a.start(ctx, c); err != nil {
		return err
	}

	printServices(c.Services())
	return nil
}

func runSearch(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("search", cfg)
	category := fs.StringP("category", "c", "", "category to search within")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		pending bool
	)
	c := a.newCatalog(catalog.WithOnUpdate(func(services []apiclient.Service) {
		mu.Lock()
		pending = false
		mu.Unlock()
		printServices(services)
	}))
	defer c.Close()

	c.SetCategory(*category)
	if err := a.start(ctx, c); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Type to search, Ctrl-D to finish.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		mu.Lock()
		pending = true
		mu.Unlock()
		c.SetSearch(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	mu.Lock()
	flush := pending
	mu.Unlock()
	if flush {
		if err := c.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func runShow(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("show", cfg)
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	if err := a.start(ctx, nil); err != nil {
		return err
	}

	svc, err := a.service(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	set, err := availability.NewLookup(a.api, log).Fetch(ctx, svc.ID)
	if err != nil {
		a.notifier.Warning("Could not load booked dates")
	}
	action := contact.NewHandoff(a.session, a.notifier, log, cfg.DefaultCountryCode).Action(*svc)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", svc.Name)
	fmt.Fprintf(w, "Category:\t%s\n", svc.Category)
	fmt.Fprintf(w, "Location:\t%s\n", svc.Location)
	fmt.Fprintf(w, "Price:\t%s\n", svc.PriceRange)
	fmt.Fprintf(w, "Rating:\t%.1f\n", svc.Rating)
	fmt.Fprintf(w, "Contact:\t%s\n", svc.ContactPhone)
	fmt.Fprintf(w, "Booked:\t%s\n", strings.Join(set.Dates(), ", "))
	fmt.Fprintf(w, "Chat:\t%s\t%s\n", action.Label, action.URL)
	fmt.Fprintf(w, "\n%s\n", svc.Description)
	return w.Flush()
}

func runAvailability(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("availability", cfg)
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}

	set, err := availability.NewLookup(a.api, log).Fetch(ctx, fs.Arg(0))
	if err != nil {
		a.notifier.Error(apiclient.DetailOr(err, "Failed to load availability"))
		return reported(err)
	}
	printBookedSet(set)
	return nil
}

func runBook(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("book", cfg)
	serviceID := fs.String("service", "", "service id")
	date := fs.StringP("date", "d", "", "date to book, YYYY-MM-DD")
	slot := fs.StringP("time", "t", "", "time slot, slot mode only")
	modeFlag := fs.StringP("mode", "m", cfg.BookingMode, "day or slot")
	fs.Parse(args)

	mode, err := appointment.ParseMode(*modeFlag)
	if err != nil {
		return err
	}
	if *serviceID == "" {
		*serviceID = fs.Arg(0)
	}

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	if err := a.start(ctx, nil); err != nil {
		return err
	}

	svc, err := a.service(ctx, *serviceID)
	if err != nil {
		return err
	}

	refreshed := make(chan struct{})
	var once sync.Once
	flow := appointment.NewFlow(mode, a.api, availability.NewLookup(a.api, log), a.session, a.notifier, log,
		appointment.WithRefreshDelay(cfg.AvailabilityRefreshDelay),
		appointment.WithOnRefresh(func(set availability.BookedSet) {
			once.Do(func() {
				printBookedSet(set)
				close(refreshed)
			})
		}),
	)
	defer flow.CloseDetails()

	if err := flow.OpenDetails(ctx, *svc); err != nil {
		log.Debugf("Booked dates unavailable: %v", err)
	}
	if err := flow.StartBooking(); err != nil {
		return err
	}
	if err := flow.SelectDate(*date); err != nil {
		return reported(err)
	}
	if *slot != "" {
		if err := flow.SelectTime(*slot); errors.Is(err, appointment.ErrSlotModeOnly) {
			a.notifier.Error("Time slots need --mode slot")
			return reported(err)
		} else if err != nil {
			return reported(err)
		}
	}

	appt, err := flow.Confirm(ctx)
	if err != nil {
		return reported(err)
	}

	when := "all day"
	if !appt.AllDay {
		when = appt.Time
	}
	fmt.Printf("%s booked on %s (%s) for %s\n", svc.Name, appt.Date, when, appt.UserEmail)

	waitFor(ctx, refreshed, cfg.AvailabilityRefreshDelay+cfg.RequestTimeout)
	return nil
}

func runChat(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("chat", cfg)
	viaServer := fs.Bool("server", false, "ask the backend to build the link")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	if err := a.start(ctx, nil); err != nil {
		return err
	}

	if *viaServer {
		if err := a.requireLogin(); err != nil {
			return err
		}
		link, err := a.api.Chat(ctx, a.session.Token(), fs.Arg(0))
		if err != nil {
			a.notifier.Error(apiclient.DetailOr(err, "Failed to build chat link"))
			return reported(err)
		}
		fmt.Println(link.WhatsAppLink)
		return nil
	}

	svc, err := a.service(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	handoff := contact.NewHandoff(a.session, a.notifier, log, cfg.DefaultCountryCode)
	if action := handoff.Action(*svc); !action.Enabled {
		a.notifier.Error(action.Label)
		return reported(contact.ErrLoginRequired)
	}
	link, err := handoff.Open(*svc)
	if err != nil {
		return reported(err)
	}
	fmt.Println(link)
	return nil
}

func runLogin(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("login", cfg)
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "account password")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		a.notifier.Error(apiclient.DetailOr(err, "Login failed"))
		return reported(err)
	}
	a.notifier.Success(fmt.Sprintf("Welcome back, %s!", user.Name))
	return nil
}

func runRegister(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("register", cfg)
	var req apiclient.RegisterRequest
	fs.StringVarP(&req.Name, "name", "n", "", "full name")
	fs.StringVarP(&req.Email, "email", "e", "", "account email")
	fs.StringVarP(&req.Password, "password", "p", "", "account password")
	fs.StringVar(&req.Phone, "phone", "", "phone number, optional")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}

	user, err := a.session.Register(ctx, req)
	if err != nil {
		a.notifier.Error(apiclient.DetailOr(err, "Registration failed"))
		return reported(err)
	}
	a.notifier.Success(fmt.Sprintf("Welcome, %s!", user.Name))
	return nil
}

func runProfile(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("profile", cfg)
	name := fs.StringP("name", "n", "", "new name")
	phone := fs.String("phone", "", "new phone number")
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	if err := a.start(ctx, nil); err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	user, _ := a.session.User()
	var update apiclient.UpdateProfileRequest
	if fs.Changed("name") {
		update.Name = name
	}
	if fs.Changed("phone") {
		update.Phone = phone
	}
	if update.Name != nil || update.Phone != nil {
		updated, err := a.api.UpdateProfile(ctx, a.session.Token(), update)
		if err != nil {
			a.notifier.Error(apiclient.DetailOr(err, "Failed to update profile"))
			return reported(err)
		}
		a.notifier.Success("Profile updated")
		user = *updated
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", user.Name)
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	if user.Phone != nil {
		fmt.Fprintf(w, "Phone:\t%s\n", *user.Phone)
	}
	return w.Flush()
}

func runLogout(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("logout", cfg)
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}
	if err := a.start(ctx, nil); err != nil {
		return err
	}

	a.session.Logout(ctx)
	a.notifier.Success("Logged out")
	return nil
}

func runSeed(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error {
	fs, verbose := newFlagSet("seed", cfg)
	fs.Parse(args)

	a, err := newApp(cfg, log, *verbose)
	if err != nil {
		return err
	}

	result, err := a.api.InitData(ctx)
	if err != nil {
		a.notifier.Error(apiclient.DetailOr(err, "Failed to initialize sample data"))
		return reported(err)
	}
	if result.Count > 0 {
		a.notifier.Success(fmt.Sprintf("%s (%d services)", result.Message, result.Count))
	} else {
		a.notifier.Success(result.Message)
	}
	return nil
}

// service fetches one service, reporting a missing or unknown id
func (a *app) service(ctx context.Context, id string) (*apiclient.Service, error) {
	svc, err := a.api.GetService(ctx, id)
	switch {
	case errors.Is(err, apiclient.ErrEmptyServiceID):
		a.notifier.Error("Please give a service id")
		return nil, reported(err)
	case err != nil:
		a.notifier.Error(apiclient.DetailOr(err, "Failed to load service"))
		return nil, reported(err)
	}
	return svc, nil
}

func printServices(services []apiclient.Service) {
	if len(services) == 0 {
		fmt.Println("No services found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tLOCATION\tPRICE\tRATING")
	for _, s := range services {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\n", s.ID, s.Name, s.Category, s.Location, s.PriceRange, s.Rating)
	}
	w.Flush()
}

func printBookedSet(set availability.BookedSet) {
	if set.Len() == 0 {
		fmt.Println("No bookings yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tOPEN SLOTS")
	for _, d := range set.Dates() {
		open := set.OpenSlots(d)
		if len(open) == 0 {
			fmt.Fprintf(w, "%s\tfully booked\n", d)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", d, strings.Join(open, " "))
	}
	w.Flush()
}
