package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxFiles caps the file batch attached to a single order.
const MaxFiles = 10

// File is a reference to an artifact kept in object storage. Orders
// reference files, they never own the bytes.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Order struct {
	ID              string          `json:"-"`
	OrderID         string          `json:"orderId"`
	UserID          string          `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	ServiceType     string          `json:"serviceType"`
	SubjectArea     string          `json:"subjectArea"`
	WordCount       int             `json:"wordCount"`
	StudyLevel      string          `json:"studyLevel"`
	DueDate         string          `json:"dueDate"`
	Module          string          `json:"module"`
	Instructions    string          `json:"instructions"`
	Price           decimal.Decimal `json:"price"`
	Files           []File          `json:"files"`
	FilesDigest     string          `json:"-"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	AdminNotified   bool            `json:"adminNotified"`
	SubmissionID    string          `json:"submissionId,omitempty"`
	AdminEmailID    string          `json:"-"`
	CustomerEmailID string          `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// New creates a draft order for a user from complete metadata.
// The orderId is assigned exactly once here and survives retries.
func New(userID string, meta *Metadata) *Order {
	return &Order{
		ID:            uuid.NewString(),
		OrderID:       uuid.NewString(),
		UserID:        userID,
		CustomerName:  meta.ClientName,
		CustomerEmail: meta.ClientEmail,
		ServiceType:   meta.ServiceType,
		SubjectArea:   meta.SubjectArea,
		WordCount:     meta.WordCount,
		StudyLevel:    meta.StudyLevel,
		DueDate:       meta.DueDate,
		Module:        meta.Module,
		Instructions:  meta.Instructions,
		Price:         meta.Price,
		Status:        StatusDraft,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     time.Now().UTC(),
	}
}

// FailedAttempt is the audit row written when every notification
// channel fails, so the submission can be recovered by hand.
type FailedAttempt struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminNotice is the in-app record shown on the operator dashboard.
type AdminNotice struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
