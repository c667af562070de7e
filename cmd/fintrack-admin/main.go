// Command fintrack-admin manages accounts and sample data from the shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/term"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const usage = `Usage: fintrack-admin <command> [flags]

Commands:
  adduser  -user <name> -email <address> [-password <password>]
  deluser  -user <name>
  seed     -user <name> [-expenses 50] [-income 20] [-seed 0]
`

var (
	seedCategories     = []string{"Food", "Transport", "Rent", "Shopping", "Bills", "Entertainment", "Health", "Other"}
	seedPaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "PayPal"}
)

func main() {
	cli.LoadEnvFile()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "adduser", "deluser", "seed":
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return flag.ErrHelp
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel, stderr).WithComponent(log.ComponentAdmin)

	ctx := context.Background()
	be, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	a := &admin{
		logger:   logger,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		users:    services.NewUserService(be.Store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL), logger),
		expenses: services.NewExpenseService(be.Store, be.Publisher, logger),
		income:   services.NewIncomeService(be.Store, be.Publisher, logger),
	}

	switch cmd {
	case "adduser":
		return a.addUser(ctx, rest)
	case "deluser":
		return a.delUser(ctx, rest)
	default:
		return a.seed(ctx, rest)
	}
}

type admin struct {
	logger *log.Logger

	stdin          io.Reader
	stdout, stderr io.Writer

	users    *services.UserService
	expenses *services.ExpenseService
	income   *services.IncomeService
}

func (a *admin) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *admin) addUser(ctx context.Context, args []string) error {
	fs := a.flagSet("adduser")
	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: user, email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(a.stdout, "Password: ")
		var err error
		password, err = readPassword(a.stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(a.stdout)
	}

	u, err := a.users.Register(ctx, services.Registration{Username: *username, Email: *email, Password: password})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(a.stdout, "User %s created successfully with ID %d\n", u.Username, u.ID)
	return nil
}

func (a *admin) delUser(ctx context.Context, args []string) error {
	fs := a.flagSet("deluser")
	username := fs.String("user", "", "Username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}

	u, err := a.users.ResolveUser(ctx, *username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("user %s not found", *username)
		}
		return err
	}
	if err := a.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Fprintf(a.stdout, "User %s deleted with all of their records\n", u.Username)
	return nil
}

// seed adds random records dated within the last 90 days.
func (a *admin) seed(ctx context.Context, args []string) error {
	fs := a.flagSet("seed")
	username := fs.String("user", "", "Username")
	numExpenses := fs.Int("expenses", 50, "Number of expenses to create")
	numIncome := fs.Int("income", 20, "Number of income records to create")
	seed := fs.Int64("seed", 0, "Random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}
	if *numExpenses < 0 || *numIncome < 0 {
		return errors.New("record counts must not be negative")
	}

	u, err := a.users.ResolveUser(ctx, *username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("user %s not found, create it first with adduser", *username)
		}
		return err
	}

	faker := gofakeit.New(*seed)
	today := core.Today()
	randomDate := func() core.Date {
		return core.Date{Time: today.AddDate(0, 0, -faker.Number(0, 90))}
	}

	for i := 0; i < *numExpenses; i++ {
		desc := faker.Sentence(5)
		method := faker.RandomString(seedPaymentMethods)
		_, err := a.expenses.Create(ctx, u.ID, core.Expense{
			Title:         faker.Company(),
			Amount:        core.Money{Cents: int64(faker.Number(1000, 50000))},
			Category:      faker.RandomString(seedCategories),
			Date:          randomDate(),
			Description:   &desc,
			PaymentMethod: &method,
		})
		if err != nil {
			return fmt.Errorf("seed expense %d: %w", i+1, err)
		}
	}

	for i := 0; i < *numIncome; i++ {
		desc := faker.Sentence(5)
		_, err := a.income.Create(ctx, u.ID, core.Income{
			Title:       faker.JobTitle(),
			Amount:      core.Money{Cents: int64(faker.Number(50000, 500000))},
			Category:    faker.RandomString(seedCategories),
			Date:        randomDate(),
			Description: &desc,
		})
		if err != nil {
			return fmt.Errorf("seed income %d: %w", i+1, err)
		}
	}

	a.logger.Info("Seeded sample data",
		log.FieldUserID, u.ID,
		log.FieldOperation, log.OpSeed,
		"expenses", *numExpenses,
		"income", *numIncome)
	fmt.Fprintf(a.stdout, "Created %d expenses and %d income records for %s\n", *numExpenses, *numIncome, u.Username)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
