package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"oneclick-go/kyc"
)

// Non-file form values are short; anything longer is truncated and left to
// field validation.
const maxFormValueBytes = 64 << 10

func (h *Handlers) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	maxFile := h.kyc.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, 3*maxFile+(1<<20))
	form, err := readSubmissionForm(r, maxFile)
	if err != nil {
		var tooLarge *oversizedBody
		if errors.As(err, &tooLarge) {
			if len(tooLarge.fields) == 0 {
				sendError(w, http.StatusRequestEntityTooLarge, "Request too large", nil)
				return
			}
			h.writeServiceError(w, r, kyc.AttachmentsTooLarge(maxFile, tooLarge.fields...))
			return
		}
		sendError(w, http.StatusBadRequest, "Invalid form data", err.Error())
		return
	}

	sub, err := h.kyc.Submit(r.Context(), principal, form)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logAudit(r, principal.UserID, "CREATE", "KYC", fmt.Sprintf("KYC submission %d created", sub.ID))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "KYC details submitted successfully",
		"id":      sub.ID,
		"status":  sub.Status,
	})
}

// oversizedBody is returned when the request body hit its cap. fields names
// the attachments known to be over the per-file limit.
type oversizedBody struct {
	fields []string
	err    error
}

func (e *oversizedBody) Error() string { return e.err.Error() }
func (e *oversizedBody) Unwrap() error { return e.err }

// readSubmissionForm streams the multipart body. Each file is kept up to
// limit+1 bytes so the validator can tell an oversized file from one exactly
// at the limit; the rest is counted and discarded.
func readSubmissionForm(r *http.Request, limit int64) (kyc.SubmissionForm, error) {
	var form kyc.SubmissionForm
	mr, err := r.MultipartReader()
	if err != nil {
		return form, err
	}

	var oversized []string
	capped := func(err error, current string) error {
		var mbe *http.MaxBytesError
		if !errors.As(err, &mbe) {
			return err
		}
		if current != "" {
			oversized = append(oversized, current)
		}
		return &oversizedBody{fields: oversized, err: err}
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return form, capped(err, "")
		}

		field := part.FormName()
		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFormValueBytes))
			if err != nil {
				return form, capped(err, "")
			}
			setFormValue(&form, field, string(value))
			continue
		}

		att, err := readAttachment(part, limit)
		if err != nil {
			return form, capped(err, field)
		}
		if att.Size > limit {
			oversized = append(oversized, field)
		}
		switch field {
		case kyc.FieldAadhaarFront:
			form.AadhaarFront = att
		case kyc.FieldAadhaarBack:
			form.AadhaarBack = att
		case kyc.FieldPANCardImage:
			form.PANCardImage = att
		}
	}
}

func setFormValue(form *kyc.SubmissionForm, field, value string) {
	switch field {
	case "fullName":
		form.FullName = value
	case "dateOfBirth":
		form.DateOfBirth = value
	case "panNumber":
		form.PANNumber = value
	case "aadhaarNumber":
		form.AadhaarNumber = value
	case "accountHolderName":
		form.AccountHolderName = value
	case "accountNumber":
		form.AccountNumber = value
	case "ifscCode":
		form.IFSCCode = value
	case "bankName":
		form.BankName = value
	case "upiId":
		form.UPIID = value
	}
}

func readAttachment(part io.Reader, limit int64) (*kyc.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	size := int64(len(data))
	if size > limit {
		n, err := io.Copy(io.Discard, part)
		if err != nil {
			return nil, err
		}
		size += n
	}
	return &kyc.Attachment{Size: size, Data: data}, nil
}

func (h *Handlers) GetKYCStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.kyc.Status(r.Context(), principal)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
