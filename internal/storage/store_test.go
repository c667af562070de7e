package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/core"
)

type StoreSuite struct {
	suite.Suite
	opts  func() Options
	store *Store
	ctx   context.Context
	alice core.User
	bob   core.User
}

func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	suite.Run(t, &StoreSuite{opts: func() Options {
		return Options{Backend: SQLite, Path: filepath.Join(dir, "fintrack.db")}
	}})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FINTRACK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FINTRACK_TEST_POSTGRES_DSN not set")
	}
	suite.Run(t, &StoreSuite{opts: func() Options {
		return Options{Backend: Postgres, DSN: dsn}
	}})
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	store, err := Open(s.ctx, s.opts())
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreSuite) SetupTest() {
	s.tx(func(tx *Tx) error {
		_, err := tx.exec(s.ctx, "DELETE FROM users")
		return err
	})
	s.tx(func(tx *Tx) (err error) {
		s.alice, err = tx.CreateUser(s.ctx, core.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
		if err != nil {
			return err
		}
		s.bob, err = tx.CreateUser(s.ctx, core.User{Username: "bob", Email: "bob@example.com", PasswordHash: "y"})
		return err
	})
}

func (s *StoreSuite) tx(fn func(tx *Tx) error) {
	s.T().Helper()
	s.Require().NoError(s.store.InTx(s.ctx, fn))
}

func (s *StoreSuite) addExpense(owner int64, title, category string, cents int64, date core.Date) core.Expense {
	var out core.Expense
	s.tx(func(tx *Tx) (err error) {
		out, err = tx.CreateExpense(s.ctx, core.Expense{
			UserID: owner, Title: title, Category: category, Amount: core.Money{Cents: cents}, Date: date,
		})
		return err
	})
	return out
}

func (s *StoreSuite) addIncome(owner int64, title, category string, cents int64, date core.Date) core.Income {
	var out core.Income
	s.tx(func(tx *Tx) (err error) {
		out, err = tx.CreateIncome(s.ctx, core.Income{
			UserID: owner, Title: title, Category: category, Amount: core.Money{Cents: cents}, Date: date,
		})
		return err
	})
	return out
}

func (s *StoreSuite) TestExpenseRoundTrip() {
	desc := "flat white"
	method := "card"
	var created core.Expense
	s.tx(func(tx *Tx) (err error) {
		created, err = tx.CreateExpense(s.ctx, core.Expense{
			UserID: s.alice.ID, Title: "Coffee", Amount: core.Money{Cents: 450}, Category: "Food",
			Date: core.NewDate(2024, 1, 5), Description: &desc, PaymentMethod: &method,
		})
		return err
	})
	s.NotZero(created.ID)

	s.tx(func(tx *Tx) error {
		got, err := tx.GetExpense(s.ctx, created.ID, s.alice.ID)
		s.Require().NoError(err)
		s.Equal("Coffee", got.Title)
		s.Equal(int64(450), got.Amount.Cents)
		s.Equal("2024-01-05", got.Date.String())
		s.Require().NotNil(got.Description)
		s.Equal("flat white", *got.Description)
		s.Require().NotNil(got.PaymentMethod)
		s.Equal("card", *got.PaymentMethod)
		return nil
	})
}

func (s *StoreSuite) TestOwnershipIsolation() {
	e := s.addExpense(s.alice.ID, "Rent", "Housing", 80000, core.NewDate(2024, 2, 1))
	in := s.addIncome(s.alice.ID, "Salary", "Job", 200000, core.NewDate(2024, 2, 1))

	s.tx(func(tx *Tx) error {
		_, err := tx.GetExpense(s.ctx, e.ID, s.bob.ID)
		s.ErrorIs(err, core.ErrNotFound)
		_, err = tx.GetIncome(s.ctx, in.ID, s.bob.ID)
		s.ErrorIs(err, core.ErrNotFound)

		hijack := e
		hijack.UserID = s.bob.ID
		hijack.Title = "stolen"
		s.ErrorIs(tx.UpdateExpense(s.ctx, hijack), core.ErrNotFound)
		s.ErrorIs(tx.DeleteExpense(s.ctx, e.ID, s.bob.ID), core.ErrNotFound)
		s.ErrorIs(tx.DeleteIncome(s.ctx, in.ID, s.bob.ID), core.ErrNotFound)

		list, err := tx.ListExpenses(s.ctx, s.bob.ID, core.ListFilter{}, core.DefaultPage())
		s.Require().NoError(err)
		s.Empty(list)

		total, err := tx.SumExpenses(s.ctx, s.bob.ID, core.Period{})
		s.Require().NoError(err)
		s.Zero(total.Cents)
		return nil
	})

	s.tx(func(tx *Tx) error {
		got, err := tx.GetExpense(s.ctx, e.ID, s.alice.ID)
		s.Require().NoError(err)
		s.Equal("Rent", got.Title)
		return nil
	})
}

func (s *StoreSuite) TestPaginationIsDisjointAndOrdered() {
	for d := 1; d <= 7; d++ {
		s.addExpense(s.alice.ID, "e", "Misc", int64(d*100), core.NewDate(2024, 3, d))
	}

	var all, first, second, third []core.Expense
	s.tx(func(tx *Tx) (err error) {
		if all, err = tx.ListExpenses(s.ctx, s.alice.ID, core.ListFilter{}, core.DefaultPage()); err != nil {
			return err
		}
		if first, err = tx.ListExpenses(s.ctx, s.alice.ID, core.ListFilter{}, core.Page{Skip: 0, Limit: 3}); err != nil {
			return err
		}
		if second, err = tx.ListExpenses(s.ctx, s.alice.ID, core.ListFilter{}, core.Page{Skip: 3, Limit: 3}); err != nil {
			return err
		}
		third, err = tx.ListExpenses(s.ctx, s.alice.ID, core.ListFilter{}, core.Page{Skip: 6, Limit: 3})
		return err
	})

	s.Len(all, 7)
	s.Equal("2024-03-07", all[0].Date.String())
	s.Equal("2024-03-01", all[6].Date.String())

	joined := append(append(append([]core.Expense{}, first...), second...), third...)
	s.Equal(all, joined)
	s.Len(third, 1)
}

func (s *StoreSuite) TestListFilters() {
	s.addExpense(s.alice.ID, "Groceries", "Food", 3000, core.NewDate(2024, 1, 10))
	s.addExpense(s.alice.ID, "Dinner out", "food", 5000, core.NewDate(2024, 2, 14))
	s.addExpense(s.alice.ID, "Train", "Transport", 1200, core.NewDate(2023, 2, 3))
	s.addExpense(s.alice.ID, "100% cotton", "Shopping", 2500, core.NewDate(2024, 2, 20))

	cases := []struct {
		name   string
		filter core.ListFilter
		titles []string
	}{
		{"category exact", core.ListFilter{Category: "Food"}, []string{"Groceries"}},
		{"month", core.ListFilter{Period: core.Period{Month: 2}}, []string{"100% cotton", "Dinner out", "Train"}},
		{"month and year", core.ListFilter{Period: core.Period{Month: 2, Year: 2024}}, []string{"100% cotton", "Dinner out"}},
		{"year", core.ListFilter{Period: core.Period{Year: 2023}}, []string{"Train"}},
		{"search title case-insensitive", core.ListFilter{Search: "DINNER"}, []string{"Dinner out"}},
		{"search matches category", core.ListFilter{Search: "food"}, []string{"Dinner out", "Groceries"}},
		{"search wildcard is literal", core.ListFilter{Search: "100%"}, []string{"100% cotton"}},
		{"search underscore is literal", core.ListFilter{Search: "_"}, nil},
		{"date range inclusive", core.ListFilter{
			StartDate: ptr(core.NewDate(2024, 1, 10)),
			EndDate:   ptr(core.NewDate(2024, 2, 14)),
		}, []string{"Dinner out", "Groceries"}},
		{"combined with AND", core.ListFilter{Search: "o", Period: core.Period{Year: 2024}, Category: "Shopping"}, []string{"100% cotton"}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.tx(func(tx *Tx) error {
				got, err := tx.ListExpenses(s.ctx, s.alice.ID, tc.filter, core.DefaultPage())
				s.Require().NoError(err)
				var titles []string
				for _, e := range got {
					titles = append(titles, e.Title)
				}
				s.Equal(tc.titles, titles)
				return nil
			})
		})
	}
}

func (s *StoreSuite) TestCoffeeSumScenario() {
	e := s.addExpense(s.alice.ID, "Coffee", "Food", 450, core.NewDate(2024, 1, 5))
	jan := core.Period{Month: 1, Year: 2024}

	s.tx(func(tx *Tx) error {
		total, err := tx.SumExpenses(s.ctx, s.alice.ID, jan)
		s.Require().NoError(err)
		s.Equal("4.50", total.String())
		return tx.DeleteExpense(s.ctx, e.ID, s.alice.ID)
	})

	s.tx(func(tx *Tx) error {
		total, err := tx.SumExpenses(s.ctx, s.alice.ID, jan)
		s.Require().NoError(err)
		s.Zero(total.Cents)
		return nil
	})
}

func (s *StoreSuite) TestAggregateOverflow() {
	jan := core.NewDate(2024, 1, 10)
	s.addExpense(s.alice.ID, "a", "Food", math.MaxInt64, jan)
	s.addExpense(s.alice.ID, "b", "Food", 1, jan)

	checks := map[string]func(tx *Tx) error{
		"sum": func(tx *Tx) error {
			_, err := tx.SumExpenses(s.ctx, s.alice.ID, core.Period{})
			return err
		},
		"by category": func(tx *Tx) error {
			_, err := tx.ExpensesByCategory(s.ctx, s.alice.ID, core.Period{})
			return err
		},
		"by month": func(tx *Tx) error {
			_, err := tx.ExpensesByMonth(s.ctx, s.alice.ID, 2024)
			return err
		},
	}
	for name, check := range checks {
		err := s.store.InTx(s.ctx, check)
		s.Truef(core.IsValidation(err), "%s: error = %v, want validation error", name, err)
	}

	s.tx(func(tx *Tx) error {
		total, err := tx.SumExpenses(s.ctx, s.bob.ID, core.Period{})
		s.Require().NoError(err)
		s.Zero(total.Cents)
		return nil
	})
}

func (s *StoreSuite) TestAggregations() {
	s.addExpense(s.alice.ID, "a", "Food", 1000, core.NewDate(2024, 1, 1))
	s.addExpense(s.alice.ID, "b", "Food", 250, core.NewDate(2024, 3, 1))
	s.addExpense(s.alice.ID, "c", "Bills", 5000, core.NewDate(2024, 3, 2))
	s.addExpense(s.alice.ID, "d", "Bills", 7000, core.NewDate(2023, 3, 2))
	s.addIncome(s.alice.ID, "pay", "Job", 100000, core.NewDate(2024, 3, 1))
	s.addExpense(s.bob.ID, "x", "Food", 99999, core.NewDate(2024, 1, 1))

	s.tx(func(tx *Tx) error {
		byCat, err := tx.ExpensesByCategory(s.ctx, s.alice.ID, core.Period{Year: 2024})
		s.Require().NoError(err)
		s.Equal([]core.CategoryTotal{
			{Category: "Bills", Amount: core.Money{Cents: 5000}},
			{Category: "Food", Amount: core.Money{Cents: 1250}},
		}, byCat)

		byMonth, err := tx.ExpensesByMonth(s.ctx, s.alice.ID, 2024)
		s.Require().NoError(err)
		s.Equal([]core.MonthTotal{
			{Month: 1, Amount: core.Money{Cents: 1000}},
			{Month: 3, Amount: core.Money{Cents: 5250}},
		}, byMonth)

		lifetime, err := tx.SumExpenses(s.ctx, s.alice.ID, core.Period{})
		s.Require().NoError(err)
		s.Equal(int64(13250), lifetime.Cents)

		income, err := tx.SumIncome(s.ctx, s.alice.ID, core.Period{Month: 3})
		s.Require().NoError(err)
		s.Equal(int64(100000), income.Cents)

		incomeByMonth, err := tx.IncomeByMonth(s.ctx, s.alice.ID, 2023)
		s.Require().NoError(err)
		s.Empty(incomeByMonth)

		incomeByCat, err := tx.IncomeByCategory(s.ctx, s.alice.ID, core.Period{})
		s.Require().NoError(err)
		s.Len(incomeByCat, 1)
		return nil
	})
}

func (s *StoreSuite) TestUpdateKeepsOwner() {
	e := s.addExpense(s.alice.ID, "Taxi", "Transport", 1500, core.NewDate(2024, 4, 1))
	e.Title = "Cab"
	e.Description = ptr("airport")

	s.tx(func(tx *Tx) error { return tx.UpdateExpense(s.ctx, e) })
	s.tx(func(tx *Tx) error {
		got, err := tx.GetExpense(s.ctx, e.ID, s.alice.ID)
		s.Require().NoError(err)
		s.Equal("Cab", got.Title)
		s.Equal("airport", core.StringOrEmpty(got.Description))
		s.Nil(got.PaymentMethod)
		return nil
	})
}

func (s *StoreSuite) TestDeleteUserCascades() {
	s.addExpense(s.alice.ID, "a", "Food", 100, core.NewDate(2024, 1, 1))
	s.addIncome(s.alice.ID, "b", "Job", 100, core.NewDate(2024, 1, 1))
	s.addExpense(s.bob.ID, "c", "Food", 100, core.NewDate(2024, 1, 1))

	s.tx(func(tx *Tx) error { return tx.DeleteUser(s.ctx, s.alice.ID) })

	s.tx(func(tx *Tx) error {
		var n int
		s.Require().NoError(tx.queryRow(s.ctx, "SELECT COUNT(*) FROM expenses WHERE user_id = ?", s.alice.ID).Scan(&n))
		s.Zero(n)
		s.Require().NoError(tx.queryRow(s.ctx, "SELECT COUNT(*) FROM income WHERE user_id = ?", s.alice.ID).Scan(&n))
		s.Zero(n)
		s.Require().NoError(tx.queryRow(s.ctx, "SELECT COUNT(*) FROM expenses WHERE user_id = ?", s.bob.ID).Scan(&n))
		s.Equal(1, n)

		_, err := tx.UserByID(s.ctx, s.alice.ID)
		s.ErrorIs(err, core.ErrNotFound)
		return nil
	})
}

func (s *StoreSuite) TestDuplicateUsers() {
	err := s.store.InTx(s.ctx, func(tx *Tx) error {
		_, err := tx.CreateUser(s.ctx, core.User{Username: "alice", Email: "other@example.com", PasswordHash: "z"})
		return err
	})
	s.ErrorIs(err, core.ErrUsernameTaken)

	err = s.store.InTx(s.ctx, func(tx *Tx) error {
		_, err := tx.CreateUser(s.ctx, core.User{Username: "carol", Email: "bob@example.com", PasswordHash: "z"})
		return err
	})
	s.ErrorIs(err, core.ErrEmailTaken)

	s.tx(func(tx *Tx) error {
		u, err := tx.UserByEmail(s.ctx, "bob@example.com")
		s.Require().NoError(err)
		s.Equal("bob", u.Username)
		_, err = tx.UserByUsername(s.ctx, "carol")
		s.ErrorIs(err, core.ErrNotFound)
		return nil
	})
}

func (s *StoreSuite) TestInTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.InTx(s.ctx, func(tx *Tx) error {
		if _, err := tx.CreateExpense(s.ctx, core.Expense{
			UserID: s.alice.ID, Title: "ghost", Category: "X", Date: core.NewDate(2024, 1, 1),
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	s.Panics(func() {
		_ = s.store.InTx(s.ctx, func(tx *Tx) error {
			if _, err := tx.CreateExpense(s.ctx, core.Expense{
				UserID: s.alice.ID, Title: "ghost", Category: "X", Date: core.NewDate(2024, 1, 1),
			}); err != nil {
				return err
			}
			panic("boom")
		})
	})

	s.tx(func(tx *Tx) error {
		list, err := tx.ListExpenses(s.ctx, s.alice.ID, core.ListFilter{}, core.DefaultPage())
		s.Require().NoError(err)
		s.Empty(list)
		return nil
	})
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "mysql"})
	require.Error(t, err)
}

func TestPostgresRebind(t *testing.T) {
	got := postgresDialect{}.rebind("SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?")
	require.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3", got)
}

func TestContainsPattern(t *testing.T) {
	require.Equal(t, `%50\% off\_sale%`, containsPattern("50% OFF_sale"))
}

func ptr[T any](v T) *T { return &v }
