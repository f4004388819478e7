package kyc

import (
	"fmt"
	"strings"
	"time"

	"oneclick-go/utils"

	"github.com/gabriel-vasile/mimetype"
)

// Form field names for the three document attachments.
const (
	FieldAadhaarFront = "aadhaarFront"
	FieldAadhaarBack  = "aadhaarBack"
	FieldPANCardImage = "panCardImage"
)

// Attachment is one uploaded file as received. Size is the full size of the
// upload; Data may be truncated to just over the upload limit.
type Attachment struct {
	Size int64
	Data []byte
}

// SubmissionForm is the raw KYC form.
type SubmissionForm struct {
	FullName          string `form:"fullName" validate:"required,min=3"`
	DateOfBirth       string `form:"dateOfBirth" validate:"required"`
	PANNumber         string `form:"panNumber" validate:"required,pan"`
	AadhaarNumber     string `form:"aadhaarNumber" validate:"required,aadhaar"`
	AccountHolderName string `form:"accountHolderName" validate:"required,min=3"`
	AccountNumber     string `form:"accountNumber" validate:"required,min=9"`
	IFSCCode          string `form:"ifscCode" validate:"required,ifsc"`
	BankName          string `form:"bankName" validate:"required,min=2"`
	UPIID             string `form:"upiId"`

	AadhaarFront *Attachment `form:"aadhaarFront" validate:"-"`
	AadhaarBack  *Attachment `form:"aadhaarBack" validate:"-"`
	PANCardImage *Attachment `form:"panCardImage" validate:"-"`
}

// Document is a validated attachment with its sniffed content type.
type Document struct {
	Field       string
	ContentType string
	Data        []byte
}

// Payload is a fully validated and normalised submission.
type Payload struct {
	FullName          string
	DateOfBirth       time.Time
	PANNumber         string
	AadhaarNumber     string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	BankName          string
	UPIID             *string

	// Documents are in upload order: Aadhaar front, Aadhaar back, PAN card.
	Documents []Document
}

// NormalizeForm applies the input clean-up rules to the text fields. It is
// idempotent.
func NormalizeForm(f SubmissionForm) SubmissionForm {
	f.FullName = utils.SanitizeString(f.FullName)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	f.PANNumber = strings.ToUpper(utils.StripSpaces(f.PANNumber))
	f.AadhaarNumber = utils.DigitsOnly(f.AadhaarNumber)
	f.AccountHolderName = utils.SanitizeString(f.AccountHolderName)
	f.AccountNumber = utils.StripSpaces(f.AccountNumber)
	f.IFSCCode = strings.ToUpper(utils.StripSpaces(f.IFSCCode))
	f.BankName = utils.SanitizeString(f.BankName)
	f.UPIID = utils.StripSpaces(f.UPIID)
	return f
}

// ValidateSubmission normalises and checks the whole form, reporting every
// invalid field at once. It has no side effects.
func ValidateSubmission(form SubmissionForm, now time.Time, maxUploadBytes int64) (Payload, error) {
	form = NormalizeForm(form)

	fields := utils.FormatValidationError(utils.ValidateStruct(form))

	var dob time.Time
	if _, failed := fields["dateOfBirth"]; !failed {
		parsed, err := utils.ParseDate(form.DateOfBirth)
		switch {
		case err != nil:
			fields["dateOfBirth"] = "Invalid date of birth"
		case !utils.ValidDateOfBirth(parsed, now):
			fields["dateOfBirth"] = "Date of birth must be between 1900 and today"
		default:
			dob = parsed
		}
	}

	attachments := []struct {
		field string
		file  *Attachment
	}{
		{FieldAadhaarFront, form.AadhaarFront},
		{FieldAadhaarBack, form.AadhaarBack},
		{FieldPANCardImage, form.PANCardImage},
	}
	docs := make([]Document, 0, len(attachments))
	for _, a := range attachments {
		doc, msg := checkAttachment(a.field, attachmentLabels[a.field], a.file, maxUploadBytes)
		if msg != "" {
			fields[a.field] = msg
			continue
		}
		docs = append(docs, doc)
	}

	if len(fields) > 0 {
		return Payload{}, invalidInput("Invalid form data", fields)
	}

	p := Payload{
		FullName:          form.FullName,
		DateOfBirth:       dob,
		PANNumber:         form.PANNumber,
		AadhaarNumber:     form.AadhaarNumber,
		AccountHolderName: form.AccountHolderName,
		AccountNumber:     form.AccountNumber,
		IFSCCode:          form.IFSCCode,
		BankName:          form.BankName,
		Documents:         docs,
	}
	if form.UPIID != "" {
		upi := form.UPIID
		p.UPIID = &upi
	}
	return p, nil
}

func checkAttachment(field, label string, file *Attachment, maxBytes int64) (Document, string) {
	if file == nil || (file.Size == 0 && len(file.Data) == 0) {
		return Document{}, label + " is required"
	}
	if file.Size > maxBytes || int64(len(file.Data)) > maxBytes {
		return Document{}, tooLargeMessage(label, maxBytes)
	}
	if len(file.Data) == 0 {
		return Document{}, label + " is empty"
	}
	mtype := mimetype.Detect(file.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Document{}, label + " must be an image"
	}
	return Document{Field: field, ContentType: mtype.String(), Data: file.Data}, ""
}

var attachmentLabels = map[string]string{
	FieldAadhaarFront: "Aadhaar front image",
	FieldAadhaarBack:  "Aadhaar back image",
	FieldPANCardImage: "PAN Card image",
}

func tooLargeMessage(label string, maxBytes int64) string {
	if maxBytes >= 1<<20 && maxBytes%(1<<20) == 0 {
		return fmt.Sprintf("%s must be at most %d MB", label, maxBytes>>20)
	}
	return fmt.Sprintf("%s must be at most %d bytes", label, maxBytes)
}

// AttachmentsTooLarge reports the named attachment fields as oversized. It is
// for transports that must stop reading a request body before the form is
// complete. Unknown field names are ignored.
func AttachmentsTooLarge(maxUploadBytes int64, fields ...string) *Error {
	msgs := make(map[string]string, len(fields))
	for _, f := range fields {
		if label, ok := attachmentLabels[f]; ok {
			msgs[f] = tooLargeMessage(label, maxUploadBytes)
		}
	}
	return invalidInput("Invalid form data", msgs)
}
