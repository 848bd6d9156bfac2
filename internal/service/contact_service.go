package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

const minContactMessageRunes = 10

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrContactInvalid  = errors.New("contact is invalid")
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// ContactValidationError lists the fields that failed validation.
type ContactValidationError struct {
	Fields map[string]string
}

func (e *ContactValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("invalid contact fields: %s", strings.Join(names, ", "))
}

func (e *ContactValidationError) Unwrap() error {
	return ErrContactInvalid
}

// ContactService handles contact form submissions.
type ContactService struct {
	db  *gorm.DB
	now func() time.Time
}

// ContactInput represents a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// ContactFilter describes filters for listing submissions.
type ContactFilter struct {
	UnreadOnly bool
}

// NewContactService creates a ContactService instance.
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb, now: time.Now}
}

// Create validates and stores a submission. Read always starts false.
func (s *ContactService) Create(input ContactInput) (*db.Contact, error) {
	if err := validateContact(input); err != nil {
		return nil, err
	}

	contact := db.Contact{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     normalizeOptional(&input.Phone),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		Read:      false,
		CreatedAt: s.now(),
	}

	if err := s.db.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns submissions newest first.
func (s *ContactService) List(filter ContactFilter) ([]db.Contact, error) {
	query := s.db.Model(&db.Contact{})
	if filter.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	contacts := make([]db.Contact, 0)
	if err := query.Order("created_at desc, id desc").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Count returns the number of stored submissions.
func (s *ContactService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.Contact{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UnreadCount returns how many submissions have not been viewed.
func (s *ContactService) UnreadCount() (int64, error) {
	var count int64
	if err := s.db.Model(&db.Contact{}).Where("read = ?", false).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Get fetches a submission by id without changing its read state.
func (s *ContactService) Get(id uint) (*db.Contact, error) {
	var contact db.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// MarkRead fetches a submission for an admin view and flags it read.
func (s *ContactService) MarkRead(id uint) (*db.Contact, error) {
	contact, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if contact.Read {
		return contact, nil
	}
	return s.SetRead(id, true)
}

// SetRead toggles the read flag.
func (s *ContactService) SetRead(id uint, read bool) (*db.Contact, error) {
	result := s.db.Model(&db.Contact{}).Where("id = ?", id).Update("read", read)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrContactNotFound
	}
	return s.Get(id)
}

// Delete removes a submission.
func (s *ContactService) Delete(id uint) error {
	result := s.db.Delete(&db.Contact{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

func validateContact(input ContactInput) error {
	fields := make(map[string]string)

	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "Name is required"
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !validEmail(email) {
		fields["email"] = "Please enter a valid email address"
	}

	if strings.TrimSpace(input.Subject) == "" {
		fields["subject"] = "Subject is required"
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		fields["message"] = "Message is required"
	} else if utf8.RuneCountInString(message) < minContactMessageRunes {
		fields["message"] = "Message must be at least 10 characters long"
	}

	if phone := strings.TrimSpace(input.Phone); phone != "" && !phonePattern.MatchString(phoneSeparator.Replace(phone)) {
		fields["phone"] = "Please enter a valid phone number"
	}

	if len(fields) > 0 {
		return &ContactValidationError{Fields: fields}
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
