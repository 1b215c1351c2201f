// clinicctl is a small command-line companion for the clinic backend,
// mainly used to exercise the client against a running environment:
// sign in, inspect the session, list appointments, book, and manage the
// offline booking queue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/medisync/clinic-client/client"
	"github.com/medisync/clinic-client/internal/config"
	"github.com/medisync/clinic-client/store"
	"github.com/medisync/clinic-client/transport"
	"github.com/medisync/clinic-client/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clinicctl: %v\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	backend, err := buildStore(cfg)
	if err != nil {
		return err
	}

	c, err := client.New(cfg.BaseURL, client.Stores{Credentials: backend, Cache: backend},
		client.WithLogger(log),
		client.WithTransport(transport.NewHTTP(cfg.BaseURL, transport.WithDefaultTimeout(cfg.Timeout))),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch cmd := flag.Arg(0); cmd {
	case "login":
		return login(ctx, c)
	case "logout":
		return c.Logout(ctx)
	case "whoami":
		return whoami(ctx, c)
	case "upcoming":
		return upcoming(ctx, c)
	case "book":
		return book(ctx, c)
	case "queue":
		return queue(ctx, c)
	case "replay":
		return replay(ctx, c)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func buildStore(cfg config.Config) (store.Store, error) {
	if cfg.RedisAddr != "" {
		return store.NewRedis(cfg.RedisAddr), nil
	}
	return store.NewFile(cfg.StorePath())
}

func usage() {
	figure.NewFigure("clinicctl", "cybermedium", true).Print()
	fmt.Println()
	fmt.Println("usage: clinicctl [-config path] [-v] <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  login     sign in with email and password")
	fmt.Println("  logout    end the session")
	fmt.Println("  whoami    show the authenticated account")
	fmt.Println("  upcoming  list upcoming appointments")
	fmt.Println("  book      book an appointment (doctor id + RFC3339 datetime)")
	fmt.Println("  queue     list bookings queued while offline")
	fmt.Println("  replay    deliver queued bookings")
}

func login(ctx context.Context, c *client.Client) error {
	if flag.NArg() < 3 {
		return errors.New("usage: clinicctl login <email> <password>")
	}
	resp, err := c.Login(ctx, flag.Arg(1), flag.Arg(2))
	if err != nil {
		return err
	}
	if resp.User != nil {
		fmt.Printf("signed in as %s\n", resp.User.Email)
	} else {
		fmt.Println("signed in")
	}
	return nil
}

func whoami(ctx context.Context, c *client.Client) error {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s clinic=%d\n", user.Username, user.Email, user.Role, user.ClinicID)

	if sess, err := c.Session().Current(ctx); err == nil {
		if sess.ExpiresWithin(time.Minute) {
			fmt.Println("access token: expiring")
		} else {
			fmt.Println("access token: valid")
		}
	}
	return nil
}

func upcoming(ctx context.Context, c *client.Client) error {
	appointments, err := c.UpcomingAppointments(ctx)
	if err != nil {
		return err
	}
	if len(appointments) == 0 {
		fmt.Println("no upcoming appointments")
		return nil
	}
	for _, apt := range appointments {
		fmt.Printf("%s  doctor=%d status=%s\n", apt.ScheduledDatetime.Format(time.RFC3339), apt.DoctorID, apt.Status)
	}
	return nil
}

func book(ctx context.Context, c *client.Client) error {
	if flag.NArg() < 3 {
		return errors.New("usage: clinicctl book <doctor-id> <datetime RFC3339>")
	}
	var doctorID int64
	if _, err := fmt.Sscanf(flag.Arg(1), "%d", &doctorID); err != nil {
		return fmt.Errorf("invalid doctor id %q", flag.Arg(1))
	}
	when, err := time.Parse(time.RFC3339, flag.Arg(2))
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", flag.Arg(2), err)
	}

	appt, err := c.BookAppointment(ctx, types.BookingRequest{DoctorID: doctorID, ScheduledDatetime: when})
	if err != nil {
		return err
	}
	if appt.Pending {
		fmt.Printf("backend unreachable, booking queued (ref %s)\n", appt.LocalRef)
		return nil
	}
	fmt.Printf("booked appointment %d for %s\n", appt.ID, appt.ScheduledDatetime.Format(time.RFC3339))
	return nil
}

func queue(ctx context.Context, c *client.Client) error {
	entries, err := c.PendingBookings(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("queue empty")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  enqueued %s\n", e.ID, time.Unix(e.EnqueuedAt, 0).Format(time.RFC3339))
	}
	return nil
}

func replay(ctx context.Context, c *client.Client) error {
	delivered, err := c.ReplayBookings(ctx)
	fmt.Printf("delivered %d queued booking(s)\n", delivered)
	return err
}
