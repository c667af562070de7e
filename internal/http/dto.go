package http

import (
	"github.com/goccy/go-json"

	"fintrack/internal/core"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type expenseRequest struct {
	Title         *string     `json:"title"`
	Amount        *core.Money `json:"amount"`
	Category      *string     `json:"category"`
	Date          *core.Date  `json:"date"`
	Description   *string     `json:"description"`
	PaymentMethod *string     `json:"payment_method"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	if err := requireFields(req.Title, req.Amount, req.Category); err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Title:         *req.Title,
		Amount:        *req.Amount,
		Category:      *req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	return e, nil
}

type incomeRequest struct {
	Title       *string     `json:"title"`
	Amount      *core.Money `json:"amount"`
	Category    *string     `json:"category"`
	Date        *core.Date  `json:"date"`
	Description *string     `json:"description"`
}

func (req incomeRequest) toIncome() (core.Income, error) {
	if err := requireFields(req.Title, req.Amount, req.Category); err != nil {
		return core.Income{}, err
	}
	in := core.Income{
		Title:       *req.Title,
		Amount:      *req.Amount,
		Category:    *req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	return in, nil
}

func requireFields(title *string, amount *core.Money, category *string) error {
	switch {
	case title == nil:
		return core.NewValidationError("title", "field required")
	case amount == nil:
		return core.NewValidationError("amount", "field required")
	case category == nil:
		return core.NewValidationError("category", "field required")
	}
	return nil
}

// patchFields holds the raw members of a partial update so that absent keys
// can be told apart from explicit nulls.
type patchFields map[string]json.RawMessage

func (p patchFields) isNull(key string) bool {
	return string(p[key]) == "null"
}

// patchRequired decodes a key that may be omitted but not set to null.
func patchRequired[T any](p patchFields, key string) (core.Optional[T], error) {
	raw, ok := p[key]
	if !ok {
		return core.Optional[T]{}, nil
	}
	if p.isNull(key) {
		return core.Optional[T]{}, core.NewValidationError(key, "may not be null")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return core.Optional[T]{}, core.NewValidationError(key, "invalid value")
	}
	return core.Some(v), nil
}

// patchNullable decodes a key whose explicit null clears the field.
func patchNullable(p patchFields, key string) (core.Optional[*string], error) {
	raw, ok := p[key]
	if !ok {
		return core.Optional[*string]{}, nil
	}
	if p.isNull(key) {
		return core.Some[*string](nil), nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return core.Optional[*string]{}, core.NewValidationError(key, "invalid value")
	}
	return core.Some(&v), nil
}

func (p patchFields) expensePatch() (core.ExpensePatch, error) {
	var patch core.ExpensePatch
	var err error
	if patch.Title, err = patchRequired[string](p, "title"); err != nil {
		return patch, err
	}
	if patch.Amount, err = patchRequired[core.Money](p, "amount"); err != nil {
		return patch, err
	}
	if patch.Category, err = patchRequired[string](p, "category"); err != nil {
		return patch, err
	}
	if patch.Date, err = patchRequired[core.Date](p, "date"); err != nil {
		return patch, err
	}
	if patch.Description, err = patchNullable(p, "description"); err != nil {
		return patch, err
	}
	if patch.PaymentMethod, err = patchNullable(p, "payment_method"); err != nil {
		return patch, err
	}
	return patch, nil
}

func (p patchFields) incomePatch() (core.IncomePatch, error) {
	var patch core.IncomePatch
	var err error
	if patch.Title, err = patchRequired[string](p, "title"); err != nil {
		return patch, err
	}
	if patch.Amount, err = patchRequired[core.Money](p, "amount"); err != nil {
		return patch, err
	}
	if patch.Category, err = patchRequired[string](p, "category"); err != nil {
		return patch, err
	}
	if patch.Date, err = patchRequired[core.Date](p, "date"); err != nil {
		return patch, err
	}
	if patch.Description, err = patchNullable(p, "description"); err != nil {
		return patch, err
	}
	return patch, nil
}

type expenseResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Amount        core.Money `json:"amount"`
	Category      string     `json:"category"`
	Date          core.Date  `json:"date"`
	Description   *string    `json:"description"`
	PaymentMethod *string    `json:"payment_method"`
	UserID        int64      `json:"user_id"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        e.Amount,
		Category:      e.Category,
		Date:          e.Date,
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		UserID:        e.UserID,
	}
}

func newExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, newExpenseResponse(e))
	}
	return out
}

type incomeResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Date        core.Date  `json:"date"`
	Description *string    `json:"description"`
	UserID      int64      `json:"user_id"`
}

func newIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		Title:       in.Title,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: in.Description,
		UserID:      in.UserID,
	}
}

func newIncomeResponses(records []core.Income) []incomeResponse {
	out := make([]incomeResponse, 0, len(records))
	for _, in := range records {
		out = append(out, newIncomeResponse(in))
	}
	return out
}

type totalResponse struct {
	Total core.Money `json:"total"`
}

type categoryResponse struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

func newCategoryResponses(totals []core.CategoryTotal) []categoryResponse {
	out := make([]categoryResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryResponse{Category: t.Category, Amount: t.Amount})
	}
	return out
}

type monthResponse struct {
	Month  int        `json:"month"`
	Amount core.Money `json:"amount"`
}

func newMonthResponses(totals []core.MonthTotal) []monthResponse {
	out := make([]monthResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, monthResponse{Month: t.Month, Amount: t.Amount})
	}
	return out
}

type comparisonResponse struct {
	Month   int        `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

type transactionResponse struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Amount   core.Money `json:"amount"`
	Type     core.Kind  `json:"type"`
	Date     core.Date  `json:"date"`
	Category string     `json:"category"`
}

type dashboardResponse struct {
	TotalBalance       core.Money            `json:"total_balance"`
	TotalIncome        core.Money            `json:"total_income"`
	TotalExpense       core.Money            `json:"total_expense"`
	MonthlyExpense     core.Money            `json:"monthly_expense"`
	RecentTransactions []transactionResponse `json:"recent_transactions"`
}

func newDashboardResponse(s core.DashboardStats) dashboardResponse {
	recent := make([]transactionResponse, 0, len(s.RecentTransactions))
	for _, t := range s.RecentTransactions {
		recent = append(recent, transactionResponse{
			ID: t.ID, Title: t.Title, Amount: t.Amount, Type: t.Kind, Date: t.Date, Category: t.Category,
		})
	}
	return dashboardResponse{
		TotalBalance:       s.TotalBalance,
		TotalIncome:        s.TotalIncome,
		TotalExpense:       s.TotalExpense,
		MonthlyExpense:     s.MonthlyExpense,
		RecentTransactions: recent,
	}
}
