package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financeia/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable Store backend.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFound("user", email)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) InsertUser(ctx context.Context, u core.User) (int64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := u.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.FindUserByEmail(ctx, u.Email); err == nil {
		return 0, core.Validationf("email %q already registered", u.Email)
	} else if !core.IsNotFound(err) {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFound("user", "")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) CreateCard(ctx context.Context, c core.CreditCard) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (user_id, name, limit_cents, closing_day, due_day) VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.LimitCents, c.ClosingDay, c.DueDay,
	)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert card id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateCard(ctx context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET name = ?, limit_cents = ?, closing_day = ?, due_day = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.LimitCents, c.ClosingDay, c.DueDay, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update card rows: %w", err)
	}
	if n == 0 {
		return core.NotFound("card", "")
	}
	return nil
}

func (s *SQLiteStore) GetCard(ctx context.Context, userID, cardID int64) (core.CreditCard, error) {
	var c core.CreditCard
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, limit_cents, closing_day, due_day FROM cards WHERE id = ? AND user_id = ?`,
		cardID, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.LimitCents, &c.ClosingDay, &c.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, core.NotFound("card", "")
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, limit_cents, closing_day, due_day FROM cards WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

func (s *SQLiteStore) AllCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, limit_cents, closing_day, due_day FROM cards ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]core.CreditCard, error) {
	var out []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.LimitCents, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (card_id, occurred_on, description, amount_cents) VALUES (?, ?, ?, ?)`,
		tx.CardID, core.DateOnly(tx.Date).Format(time.DateOnly), tx.Description, tx.Amount.Cents,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListCardTransactions(ctx context.Context, cardID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, card_id, occurred_on, description, amount_cents FROM transactions WHERE card_id = ? ORDER BY id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx   core.Transaction
			day  string
			amnt int64
		)
		if err := rows.Scan(&tx.ID, &tx.CardID, &day, &tx.Description, &amnt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", day, err)
		}
		tx.Amount = core.Money{Cents: amnt}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) MarkPaid(ctx context.Context, cardID int64, cycle string, amountCents int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoice_payments (card_id, cycle, amount_cents, paid_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (card_id, cycle) DO UPDATE SET amount_cents = excluded.amount_cents, paid_at = excluded.paid_at`,
		cardID, cycle, amountCents, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PaidCycles(ctx context.Context, cardID int64) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cycle FROM invoice_payments WHERE card_id = ?`, cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list paid cycles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var cycle string
		if err := rows.Scan(&cycle); err != nil {
			return nil, fmt.Errorf("scan paid cycle: %w", err)
		}
		out[cycle] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paid cycles: %w", err)
	}
	return out, nil
}
