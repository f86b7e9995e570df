package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{StatusDraft, StatusUploaded, true},
		{StatusUploaded, StatusAwaitingAdmin, true},
		{StatusAwaitingAdmin, StatusPaymentPending, true},
		{StatusPaymentPending, StatusPaid, true},
		{StatusPaid, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},

		// no skipping ahead
		{StatusDraft, StatusAwaitingAdmin, false},
		{StatusUploaded, StatusPaymentPending, false},
		{StatusDraft, StatusPaid, false},

		// no going back
		{StatusAwaitingAdmin, StatusUploaded, false},

		// archive/cancel from any non-terminal state
		{StatusDraft, StatusCancelled, true},
		{StatusAwaitingAdmin, StatusArchived, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusArchived, false},
		{StatusArchived, StatusUploaded, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanAdvanceTo_Gates(t *testing.T) {
	t.Run("uploaded requires files", func(t *testing.T) {
		o := &Order{OrderID: "ord-1", Status: StatusDraft}
		require.ErrorIs(t, o.CanAdvanceTo(StatusUploaded), ErrNoFiles)

		o.Files = []File{{Name: "essay.docx", URL: "https://s/1", Size: 20480}}
		assert.NoError(t, o.CanAdvanceTo(StatusUploaded))
	})

	t.Run("awaiting_admin requires notification", func(t *testing.T) {
		o := &Order{OrderID: "ord-1", Status: StatusUploaded, Files: []File{{Name: "essay.docx"}}}
		require.ErrorIs(t, o.CanAdvanceTo(StatusAwaitingAdmin), ErrNotNotified)

		o.AdminNotified = true
		assert.NoError(t, o.CanAdvanceTo(StatusAwaitingAdmin))
	})

	t.Run("invalid transition reported as such", func(t *testing.T) {
		o := &Order{OrderID: "ord-1", Status: StatusDraft}
		require.ErrorIs(t, o.CanAdvanceTo(StatusPaid), ErrInvalidTransition)
	})
}

func TestMetadataValidate(t *testing.T) {
	complete := func() *Metadata {
		return &Metadata{
			ServiceType: "essay",
			SubjectArea: "law",
			WordCount:   1500,
			StudyLevel:  "undergraduate",
			DueDate:     "2026-09-15",
			ClientEmail: "student@example.com",
			ClientName:  "Ada",
		}
	}

	assert.NoError(t, complete().Validate())

	t.Run("missing required field", func(t *testing.T) {
		m := complete()
		m.SubjectArea = ""
		require.ErrorIs(t, m.Validate(), ErrIncompleteMetadata)
	})

	t.Run("negative word count", func(t *testing.T) {
		m := complete()
		m.WordCount = -1
		require.ErrorIs(t, m.Validate(), ErrIncompleteMetadata)
	})

	t.Run("module and instructions are optional", func(t *testing.T) {
		m := complete()
		m.Module = ""
		m.Instructions = ""
		assert.NoError(t, m.Validate())
	})
}

func TestNewOrder(t *testing.T) {
	meta := &Metadata{
		ServiceType: "essay",
		SubjectArea: "law",
		WordCount:   1500,
		StudyLevel:  "undergraduate",
		DueDate:     "2026-09-15",
		ClientEmail: "student@example.com",
		ClientName:  "Ada",
	}
	o := New("user-1", meta)

	assert.NotEmpty(t, o.OrderID)
	assert.Equal(t, StatusDraft, o.Status)
	assert.Equal(t, PaymentUnpaid, o.PaymentStatus)
	assert.False(t, o.AdminNotified)
	assert.Equal(t, "Ada", o.CustomerName)

	other := New("user-1", meta)
	assert.NotEqual(t, o.OrderID, other.OrderID)
}
