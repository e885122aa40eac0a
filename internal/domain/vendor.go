package domain

import (
	"fmt"
	"strings"
	"time"
)

// Vendor is a venue owner. Email verification flips IsVerified; IsActive
// stays false until an admin explicitly approves the vendor.
type Vendor struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	CNICNumber     string    `json:"cnic_number"`
	CNICFrontImage *string   `json:"cnic_front_image,omitempty"`
	CNICBackImage  *string   `json:"cnic_back_image,omitempty"`
	PasswordHash   *string   `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VendorInfo strips the ID-document blobs for listings where they are noise.
type VendorInfo struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CNICNumber string    `json:"cnic_number"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (v *Vendor) ToInfo() *VendorInfo {
	return &VendorInfo{
		ID:         v.ID,
		Name:       v.Name,
		Email:      v.Email,
		Phone:      v.Phone,
		CNICNumber: v.CNICNumber,
		IsActive:   v.IsActive,
		IsVerified: v.IsVerified,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

type VendorSignupRequest struct {
	Name       string
	Email      string
	Phone      string
	CNICNumber string
	Password   string
	// Base64-encoded ID document images, already size-checked by the handler.
	CNICFrontImage *string
	CNICBackImage  *string
}

type VendorProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type VendorApprovalRequest struct {
	VendorID int64 `json:"vendor_id"`
	Approved bool  `json:"approved"`
}

// NormalizeCNIC strips dashes and spaces from a national-id number.
func NormalizeCNIC(cnic string) string {
	cnic = strings.ReplaceAll(cnic, "-", "")
	return strings.ReplaceAll(cnic, " ", "")
}

func IsValidCNIC(cnic string) bool {
	if len(cnic) != 13 {
		return false
	}
	for _, r := range cnic {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (r *VendorSignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.CNICNumber = NormalizeCNIC(r.CNICNumber)
}

func (r *VendorSignupRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" || !IsValidEmail(r.Email) {
		return fmt.Errorf("a valid email is required")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !IsValidCNIC(r.CNICNumber) {
		return fmt.Errorf("cnic number must be exactly 13 digits")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
