// internal/models/profile.go
package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "17:00"

	// MaxAdditionalPhones is a UI policy; the backend does not enforce it.
	MaxAdditionalPhones = 4
)

// Weekdays lists the working-hours keys in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	ErrTooManyPhones   = fmt.Errorf("at most %d additional phones are allowed", MaxAdditionalPhones)
	ErrPhoneNotFound   = errors.New("additional phone not found")
	ErrBranchNotFound  = errors.New("branch not found")
	ErrUnknownWeekday  = errors.New("unknown weekday")
	ErrDocumentMissing = errors.New("document has neither content nor path")
)

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WorkingHours is keyed by lowercase weekday name.
type WorkingHours map[string]DayHours

// DefaultWorkingHours returns 09:00-17:00 for every day with Friday closed.
func DefaultWorkingHours() WorkingHours {
	wh := make(WorkingHours, len(Weekdays))
	for _, day := range Weekdays {
		wh[day] = DayHours{Open: DefaultOpenTime, Close: DefaultCloseTime, Closed: day == "friday"}
	}
	return wh
}

func (wh WorkingHours) clone() WorkingHours {
	if wh == nil {
		return nil
	}
	out := make(WorkingHours, len(wh))
	for k, v := range wh {
		out[k] = v
	}
	return out
}

func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether no location was picked.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

type AdditionalPhone struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

type Branch struct {
	ID              ID           `json:"id"`
	Name            string       `json:"name"`
	Address         string       `json:"address"`
	Phone           string       `json:"phone"`
	Email           string       `json:"email"`
	Manager         string       `json:"manager"`
	Location        Location     `json:"location"`
	WorkingHours    WorkingHours `json:"workingHours"`
	Status          string       `json:"status"`
	SpecialServices []string     `json:"specialServices"`
	IsMainBranch    bool         `json:"isMainBranch"`
}

func (b Branch) clone() Branch {
	b.WorkingHours = b.WorkingHours.clone()
	b.SpecialServices = cloneStrings(b.SpecialServices)
	return b
}

// Document is the verification file picked by the supplier. It is uploaded
// on its own before the profile payload and never embedded in it.
type Document struct {
	FileName    string `json:"fileName"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"-"`
}

// Open returns the document bytes, reading Path when Content is empty.
func (d *Document) Open() (io.ReadCloser, error) {
	if len(d.Content) > 0 {
		return io.NopCloser(bytes.NewReader(d.Content)), nil
	}
	if d.Path == "" {
		return nil, ErrDocumentMissing
	}
	return os.Open(d.Path)
}

// Name is the file name sent in the multipart part.
func (d *Document) Name() string {
	if d.FileName != "" {
		return d.FileName
	}
	return filepath.Base(d.Path)
}

// NumericString accepts a JSON number or string and always holds a string.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	s, err := numberOrString(data)
	if err != nil {
		return fmt.Errorf("serviceDistance must be a number or string: %w", err)
	}
	*n = NumericString(s)
	return nil
}

// NumericStringFromFloat formats a distance without trailing zeros.
func NumericStringFromFloat(f float64) NumericString {
	return NumericString(strconv.FormatFloat(f, 'f', -1, 64))
}

// ProfileFormData is the wizard draft shared by all six steps.
type ProfileFormData struct {
	BusinessName string   `json:"businessName"`
	Category     string   `json:"category"`
	Categories   []string `json:"categories"`
	Description  string   `json:"description"`
	BusinessType string   `json:"businessType"`

	ContactEmail     string            `json:"contactEmail"`
	ContactPhone     string            `json:"contactPhone"`
	MainPhone        string            `json:"mainPhone"`
	Website          string            `json:"website"`
	Address          string            `json:"address"`
	AdditionalPhones []AdditionalPhone `json:"additionalPhones"`

	TargetCustomers []string      `json:"targetCustomers"`
	ServiceDistance NumericString `json:"serviceDistance"`
	Services        []string      `json:"services"`
	ProductKeywords []string      `json:"productKeywords"`

	WorkingHours WorkingHours `json:"workingHours"`
	Location     Location     `json:"location"`

	HasBranches bool     `json:"hasBranches"`
	Branches    []Branch `json:"branches"`

	Document *Document `json:"document,omitempty"`
}

// NewProfileFormData returns the initial wizard state.
func NewProfileFormData() *ProfileFormData {
	return &ProfileFormData{
		Categories:       []string{},
		AdditionalPhones: []AdditionalPhone{},
		TargetCustomers:  []string{},
		Services:         []string{},
		ProductKeywords:  []string{},
		WorkingHours:     DefaultWorkingHours(),
		Branches:         []Branch{},
	}
}

// HydrateFromVerification copies the registration details carried over
// through the one-shot verification hand-off. Empty values are ignored.
func (f *ProfileFormData) HydrateFromVerification(v VerificationData) {
	if v.BusinessName != "" {
		f.BusinessName = v.BusinessName
	}
	if v.Email != "" {
		f.ContactEmail = v.Email
	}
	if v.Phone != "" {
		f.MainPhone = v.Phone
		f.ContactPhone = v.Phone
	}
}

// Clone returns a deep copy.
func (f *ProfileFormData) Clone() *ProfileFormData {
	c := *f
	c.Categories = cloneStrings(f.Categories)
	c.TargetCustomers = cloneStrings(f.TargetCustomers)
	c.Services = cloneStrings(f.Services)
	c.ProductKeywords = cloneStrings(f.ProductKeywords)
	c.WorkingHours = f.WorkingHours.clone()
	if f.AdditionalPhones != nil {
		c.AdditionalPhones = append([]AdditionalPhone{}, f.AdditionalPhones...)
	}
	if f.Branches != nil {
		c.Branches = make([]Branch, len(f.Branches))
		for i, b := range f.Branches {
			c.Branches[i] = b.clone()
		}
	}
	if f.Document != nil {
		doc := *f.Document
		doc.Content = append([]byte(nil), f.Document.Content...)
		c.Document = &doc
	}
	return &c
}

// SetDayHours replaces one weekday entry.
func (f *ProfileFormData) SetDayHours(day string, hours DayHours) error {
	day = strings.ToLower(day)
	if !IsWeekday(day) {
		return fmt.Errorf("%w: %q", ErrUnknownWeekday, day)
	}
	if f.WorkingHours == nil {
		f.WorkingHours = DefaultWorkingHours()
	}
	f.WorkingHours[day] = hours
	return nil
}

// SetProductKeywords parses a comma separated input into the keyword set.
func (f *ProfileFormData) SetProductKeywords(input string) {
	f.ProductKeywords = ParseKeywords(input)
}

// AddAdditionalPhone appends a phone with a fresh id.
func (f *ProfileFormData) AddAdditionalPhone(phoneType, number, name string) (AdditionalPhone, error) {
	if len(f.AdditionalPhones) >= MaxAdditionalPhones {
		return AdditionalPhone{}, ErrTooManyPhones
	}
	p := AdditionalPhone{
		ID:     uuid.NewString(),
		Type:   phoneType,
		Number: number,
		Name:   name,
	}
	f.AdditionalPhones = append(f.AdditionalPhones, p)
	return p, nil
}

func (f *ProfileFormData) RemoveAdditionalPhone(id string) error {
	for i, p := range f.AdditionalPhones {
		if p.ID == id {
			f.AdditionalPhones = append(f.AdditionalPhones[:i], f.AdditionalPhones[i+1:]...)
			return nil
		}
	}
	return ErrPhoneNotFound
}

// AddBranch stores b under a fresh id and returns the stored copy. A branch
// marked main demotes any previous main branch.
func (f *ProfileFormData) AddBranch(b Branch) Branch {
	b = b.clone()
	b.ID = ID(uuid.NewString())
	if b.WorkingHours == nil {
		b.WorkingHours = DefaultWorkingHours()
	}
	if b.Status == "" {
		b.Status = "active"
	}
	if b.SpecialServices == nil {
		b.SpecialServices = []string{}
	}
	if b.IsMainBranch {
		f.clearMainBranch()
	}
	f.Branches = append(f.Branches, b)
	f.HasBranches = true
	return b
}

// UpdateBranch applies fn to the branch with the given id. The id itself
// cannot be changed.
func (f *ProfileFormData) UpdateBranch(id ID, fn func(*Branch)) error {
	for i := range f.Branches {
		if f.Branches[i].ID != id {
			continue
		}
		updated := f.Branches[i].clone()
		fn(&updated)
		updated.ID = id
		if updated.IsMainBranch && !f.Branches[i].IsMainBranch {
			f.clearMainBranch()
		}
		f.Branches[i] = updated
		return nil
	}
	return ErrBranchNotFound
}

func (f *ProfileFormData) RemoveBranch(id ID) error {
	for i, b := range f.Branches {
		if b.ID == id {
			f.Branches = append(f.Branches[:i], f.Branches[i+1:]...)
			return nil
		}
	}
	return ErrBranchNotFound
}

func (f *ProfileFormData) clearMainBranch() {
	for i := range f.Branches {
		f.Branches[i].IsMainBranch = false
	}
}

// ParseKeywords splits on commas, trims, drops empties and removes
// duplicates keeping the first occurrence. Matching is case-sensitive.
func ParseKeywords(input string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
