package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{
		db: db,
	}
}

const orderColumns = `id, order_id, user_id, customer_name, customer_email,
	service_type, subject_area, word_count, study_level, due_date, module,
	instructions, price, files, files_digest, status, payment_status,
	admin_notified, submission_id, admin_email_id, customer_email_id, created_at`

func (or *OrderRepo) Add(ctx context.Context, o *Order) error {
	rawFiles, err := json.Marshal(o.Files)
	if err != nil {
		return fmt.Errorf("order/repo: failed serializing files, %w", err)
	}
	_, err = or.db.ExecContext(ctx,
		`INSERT INTO orders(id, order_id, user_id, customer_name, customer_email,
			service_type, subject_area, word_count, study_level, due_date, module,
			instructions, price, files, files_digest, status, payment_status,
			admin_notified, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		o.ID, o.OrderID, o.UserID, o.CustomerName, o.CustomerEmail,
		o.ServiceType, o.SubjectArea, o.WordCount, o.StudyLevel, o.DueDate, o.Module,
		o.Instructions, o.Price, rawFiles, o.FilesDigest, o.Status, o.PaymentStatus,
		o.AdminNotified, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("order/repo: failed inserting order, %w", err)
	}
	return nil
}

func (or *OrderRepo) Get(ctx context.Context, orderID string) (*Order, error) {
	row := or.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order/repo: order `%s`: %w", orderID, ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("order/repo: can't get order `%s`, %w", orderID, err)
	}
	return o, nil
}

// GetPending finds the order a retried submission must reuse: same
// user, same file set, not yet past the admin-notification gate.
func (or *OrderRepo) GetPending(ctx context.Context, userID, filesDigest string) (*Order, error) {
	row := or.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 AND files_digest = $2 AND status IN ($3, $4)
		ORDER BY created_at DESC LIMIT 1`,
		userID, filesDigest, StatusDraft, StatusUploaded)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order/repo: no pending order for user `%s`: %w", userID, ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("order/repo: can't get pending order, %w", err)
	}
	return o, nil
}

func (or *OrderRepo) GetByUser(ctx context.Context, userID string) ([]*Order, error) {
	rows, err := or.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("order/repo: can't get user orders, %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("order/repo: scan order row failed, %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order/repo: reading order rows failed, %w", err)
	}
	return orders, nil
}

// AttachFiles replaces the attached file list and moves the order to
// the given status in one write.
func (or *OrderRepo) AttachFiles(ctx context.Context, orderID string, files []File, digest, status string) error {
	rawFiles, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("order/repo: failed serializing files, %w", err)
	}
	_, err = or.db.ExecContext(ctx,
		`UPDATE orders SET files = $1, files_digest = $2, status = $3 WHERE order_id = $4`,
		rawFiles, digest, status, orderID)
	if err != nil {
		return fmt.Errorf("order/repo: failed attaching files to `%s`, %w", orderID, err)
	}
	return nil
}

func (or *OrderRepo) SetStatus(ctx context.Context, orderID, status string) error {
	_, err := or.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("order/repo: failed updating status of `%s`, %w", orderID, err)
	}
	return nil
}

// FinalizeNotification records the aggregate channel outcome: the
// notified flag, the winning submission id and the gateway message ids.
func (or *OrderRepo) FinalizeNotification(ctx context.Context, orderID, status, submissionID, adminEmailID, customerEmailID string) error {
	_, err := or.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, admin_notified = TRUE, submission_id = $2,
			admin_email_id = $3, customer_email_id = $4
		WHERE order_id = $5`,
		status, submissionID, adminEmailID, customerEmailID, orderID)
	if err != nil {
		return fmt.Errorf("order/repo: failed finalizing notification of `%s`, %w", orderID, err)
	}
	return nil
}

func (or *OrderRepo) AddFailedAttempt(ctx context.Context, fa *FailedAttempt) error {
	_, err := or.db.ExecContext(ctx,
		`INSERT INTO failed_attempts(id, order_id, user_id, author, detail, created_at)
		VALUES($1, $2, $3, $4, $5, $6)`,
		fa.ID, fa.OrderID, fa.UserID, fa.Author, fa.Detail, fa.CreatedAt)
	if err != nil {
		return fmt.Errorf("order/repo: failed inserting failed attempt, %w", err)
	}
	return nil
}

func (or *OrderRepo) AddAdminNotice(ctx context.Context, n *AdminNotice) error {
	_, err := or.db.ExecContext(ctx,
		`INSERT INTO admin_notices(id, order_id, title, body, created_at)
		VALUES($1, $2, $3, $4, $5)`,
		n.ID, n.OrderID, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("order/repo: failed inserting admin notice, %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var rawFiles []byte
	err := row.Scan(&o.ID, &o.OrderID, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.ServiceType, &o.SubjectArea, &o.WordCount, &o.StudyLevel, &o.DueDate, &o.Module,
		&o.Instructions, &o.Price, &rawFiles, &o.FilesDigest, &o.Status, &o.PaymentStatus,
		&o.AdminNotified, &o.SubmissionID, &o.AdminEmailID, &o.CustomerEmailID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawFiles) > 0 {
		if err := json.Unmarshal(rawFiles, &o.Files); err != nil {
			return nil, fmt.Errorf("failed parsing files column: %w", err)
		}
	}
	return o, nil
}
