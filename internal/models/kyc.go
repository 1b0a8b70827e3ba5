package models

import "gorm.io/gorm"

// KYC records are one-per-principal: the POST handlers upsert instead of
// inserting duplicates. OwnerID/OwnerRole key the owning principal, since
// identities live in role-scoped tables.

type PersonalDetails struct {
	gorm.Model
	OwnerID     uint   `json:"-" gorm:"not null;uniqueIndex:idx_personal_owner"`
	OwnerRole   string `json:"-" gorm:"not null;uniqueIndex:idx_personal_owner"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type GSTDetails struct {
	gorm.Model
	OwnerID           uint   `json:"-" gorm:"not null;uniqueIndex:idx_gst_owner"`
	OwnerRole         string `json:"-" gorm:"not null;uniqueIndex:idx_gst_owner"`
	GSTNumber         string `json:"gst_number"`
	GSTCertificateURL string `json:"gst_certificate_url"`
}

type DocumentsUpload struct {
	gorm.Model
	OwnerID                 uint   `json:"-" gorm:"not null;uniqueIndex:idx_documents_owner"`
	OwnerRole               string `json:"-" gorm:"not null;uniqueIndex:idx_documents_owner"`
	PanCardURL              string `json:"pan_card_url"`
	AadhaarCardURL          string `json:"aadhaar_card_url"`
	SupportingDocumentsURLs string `json:"supporting_documents_urls"`
}

type BankDetails struct {
	gorm.Model
	OwnerID       uint   `json:"-" gorm:"not null;uniqueIndex:idx_bank_owner"`
	OwnerRole     string `json:"-" gorm:"not null;uniqueIndex:idx_bank_owner"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
}
