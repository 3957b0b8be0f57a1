package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"tool2go/config"
	"tool2go/console"
	"tool2go/logger"
	"tool2go/rental"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "tool2go",
		Short:         "Tool rental desk",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "tool2go.yaml", "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive rental desk (default)",
			RunE:  runShell,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Write the starter catalog and customers into an empty database",
			RunE:  runSeed,
		},
		&cobra.Command{
			Use:   "hash-password",
			Short: "Print a bcrypt hash for operator.password_hash",
			RunE:  runHashPassword,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config and points the logger at the configured file.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	closeLog := func() {}
	if !cfg.Log.ToStderr() {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, w)
	return cfg, closeLog, nil
}

func deps(cfg *config.Config, prompt rental.Prompter) rental.Deps {
	return rental.Deps{
		Prompt: prompt,
		Clock:  rental.SystemClock,
		Pricer: rental.Pricer{ApplyWeekRate: cfg.Rental.ApplyWeekRate},
		Rules:  rental.Rules{MinInsuredAge: cfg.Rental.MinInsuredAge, MinCustomerAge: cfg.Rental.MinCustomerAge},
		Log:    logger.WithService("rental"),
	}
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// authenticateOperator checks the operator password when a hash is configured.
func authenticateOperator(cfg *config.Config) error {
	if cfg.Operator.PasswordHash == "" {
		return nil
	}
	password, err := readPassword("Operator password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.Operator.PasswordHash), []byte(password)); err != nil {
		logger.Warn("operator authentication failed")
		return errors.New("invalid operator password")
	}
	return nil
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := authenticateOperator(cfg); err != nil {
		return err
	}

	store, err := rental.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	ctx := cmd.Context()

	scanner := bufio.NewScanner(os.Stdin)
	prompt := console.NewFromScanner(scanner, os.Stdout, console.DefaultCancelWord)
	manager := rental.NewRentalManager(ctx, store, deps(cfg, prompt))
	defer manager.Close()

	if cfg.Seed.OnEmpty && manager.Empty() {
		if _, err := manager.Seed(ctx); err != nil {
			reportErr(err)
		}
	}
	logger.Info("shell started", "db", cfg.Database.Path)

	printHelp(prompt)
	for {
		line, ok := prompt.Line("\n> ")
		if !ok {
			break
		}
		switch line {
		case "list customers":
			manager.Clients.ListCustomers()
		case "add customer":
			reportOutcome(manager.AddCustomer(ctx))
		case "edit customer":
			reportOutcome(manager.EditCustomer(ctx))
		case "delete customer":
			reportOutcome(manager.DeleteCustomer(ctx))
		case "list categories":
			manager.Catalog.ListCategories()
		case "add category":
			reportOutcome(manager.AddCategory(ctx))
		case "edit category":
			reportOutcome(manager.EditCategory(ctx))
		case "delete category":
			reportOutcome(manager.DeleteCategory(ctx))
		case "list tools":
			manager.Catalog.ListTypes()
		case "add tool":
			reportOutcome(manager.AddType(ctx))
		case "edit tool":
			reportOutcome(manager.EditType(ctx))
		case "delete tool":
			reportOutcome(manager.DeleteType(ctx))
		case "list bookings":
			handleListBookings(manager)
		case "add booking":
			reportBooking(manager.AddBooking(ctx))
		case "edit booking":
			reportBooking(manager.EditBooking(ctx))
		case "delete booking":
			reportBooking(manager.DeleteBooking(ctx))
		case "help":
			printHelp(prompt)
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		case "":
		default:
			fmt.Println("Unknown command. Type 'help' to list the available commands.")
		}
	}
	return nil
}

func printHelp(p *console.Prompter) {
	fmt.Println("Welcome to the Tool2Go rental desk!")
	fmt.Println("Available commands:")
	fmt.Println("  Customers: list customers, add customer, edit customer, delete customer")
	fmt.Println("  Categories: list categories, add category, edit category, delete category")
	fmt.Println("  Tools: list tools, add tool, edit tool, delete tool")
	fmt.Println("  Bookings: list bookings, add booking, edit booking, delete booking")
	fmt.Println("  System: help, exit")
	fmt.Println()
	fmt.Println("Tips:")
	fmt.Printf("  • At any prompt %s\n", p.CancelHint())
	fmt.Println("  • When editing, press Enter to keep the current value")
}

func handleListBookings(mgr *rental.RentalManager) {
	views := mgr.ListBookings()
	if len(views) == 0 {
		fmt.Println("No bookings.")
		return
	}
	for i, v := range views {
		fmt.Printf("%d. %s\n\n", i+1, v)
	}
}

func reportOutcome(_ rental.Outcome, err error) {
	reportErr(err)
}

func reportBooking(_ rental.BookingResult, err error) {
	reportErr(err)
}

func reportErr(err error) {
	if err == nil {
		return
	}
	var saveErr *rental.SaveError
	switch {
	case errors.As(err, &saveErr):
		fmt.Printf("Warning: %v\n", saveErr)
	case errors.Is(err, rental.ErrPrecondition):
		fmt.Printf("Not possible: %v\n", err)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := rental.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	manager := rental.NewRentalManager(cmd.Context(), store, deps(cfg, nil))
	defer manager.Close()

	seeded, err := manager.Seed(cmd.Context())
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Println("Database already holds data, nothing seeded.")
		return nil
	}
	fmt.Printf("Seeded %s.\n", cfg.Database.Path)
	return nil
}

func runHashPassword(_ *cobra.Command, _ []string) error {
	password, err := readPassword("New operator password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	again, err := readPassword("Repeat password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if again != password {
		return errors.New("passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Println(string(hash))
	return nil
}
