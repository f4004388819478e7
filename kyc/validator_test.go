package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var kerr *Error
	require.ErrorAs(t, err, &kerr)
	require.Equal(t, CodeInvalidInput, kerr.Code)
	return kerr.Fields
}

func TestValidateSubmissionAccepts(t *testing.T) {
	form := validForm()
	form.PANNumber = " abcde 1234f "
	form.AadhaarNumber = "2345 6789 0123"
	form.IFSCCode = "hdfc 0001234"
	form.AccountNumber = "0012 3456 7890"
	form.FullName = "  <b>Ravi</b> Kumar "
	form.UPIID = " ravi@okhdfc "

	p, err := ValidateSubmission(form, testNow, DefaultMaxUploadBytes)
	require.NoError(t, err)

	assert.Equal(t, "ABCDE1234F", p.PANNumber)
	assert.Equal(t, "234567890123", p.AadhaarNumber)
	assert.Equal(t, "HDFC0001234", p.IFSCCode)
	assert.Equal(t, "001234567890", p.AccountNumber)
	assert.Equal(t, "Ravi Kumar", p.FullName)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), p.DateOfBirth)
	require.NotNil(t, p.UPIID)
	assert.Equal(t, "ravi@okhdfc", *p.UPIID)

	require.Len(t, p.Documents, 3)
	assert.Equal(t, FieldAadhaarFront, p.Documents[0].Field)
	assert.Equal(t, "image/png", p.Documents[0].ContentType)
	assert.Equal(t, FieldAadhaarBack, p.Documents[1].Field)
	assert.Equal(t, "image/jpeg", p.Documents[1].ContentType)
	assert.Equal(t, FieldPANCardImage, p.Documents[2].Field)
}

func TestValidateSubmissionCanonicalPANUnchanged(t *testing.T) {
	p, err := ValidateSubmission(validForm(), testNow, DefaultMaxUploadBytes)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", p.PANNumber)
	assert.Nil(t, p.UPIID, "blank UPI id is absent")
}

func TestValidateSubmissionReportsEveryField(t *testing.T) {
	_, err := ValidateSubmission(SubmissionForm{}, testNow, DefaultMaxUploadBytes)
	fields := fieldsOf(t, err)

	for _, name := range []string{
		"fullName", "dateOfBirth", "panNumber", "aadhaarNumber", "accountHolderName",
		"accountNumber", "ifscCode", "bankName", FieldAadhaarFront, FieldAadhaarBack, FieldPANCardImage,
	} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "upiId")
}

func TestValidateSubmissionRejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *SubmissionForm)
		field string
	}{
		{"pan with wrong letter count", func(f *SubmissionForm) { f.PANNumber = "abcd efgh1234z" }, "panNumber"},
		{"aadhaar starting with 1", func(f *SubmissionForm) { f.AadhaarNumber = "123456789012" }, "aadhaarNumber"},
		{"aadhaar too short", func(f *SubmissionForm) { f.AadhaarNumber = "23456789012" }, "aadhaarNumber"},
		{"ifsc without zero", func(f *SubmissionForm) { f.IFSCCode = "HDFC1001234" }, "ifscCode"},
		{"short account number", func(f *SubmissionForm) { f.AccountNumber = "12345678" }, "accountNumber"},
		{"short name", func(f *SubmissionForm) { f.FullName = "Al" }, "fullName"},
		{"name that is only markup", func(f *SubmissionForm) { f.FullName = "<script>x</script>" }, "fullName"},
		{"short holder name", func(f *SubmissionForm) { f.AccountHolderName = " R " }, "accountHolderName"},
		{"short bank name", func(f *SubmissionForm) { f.BankName = "H" }, "bankName"},
		{"unparseable dob", func(f *SubmissionForm) { f.DateOfBirth = "17/05/1990" }, "dateOfBirth"},
		{"future dob", func(f *SubmissionForm) { f.DateOfBirth = "2025-03-11" }, "dateOfBirth"},
		{"dob before 1900", func(f *SubmissionForm) { f.DateOfBirth = "1899-12-31" }, "dateOfBirth"},
		{"missing front", func(f *SubmissionForm) { f.AadhaarFront = nil }, FieldAadhaarFront},
		{"empty back", func(f *SubmissionForm) { f.AadhaarBack = &Attachment{} }, FieldAadhaarBack},
		{"pdf pan card", func(f *SubmissionForm) { f.PANCardImage = imageFile(pdfData) }, FieldPANCardImage},
		{"declared oversize", func(f *SubmissionForm) {
			f.AadhaarFront = &Attachment{Size: DefaultMaxUploadBytes + 1, Data: pngData}
		}, FieldAadhaarFront},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			_, err := ValidateSubmission(form, testNow, DefaultMaxUploadBytes)
			fields := fieldsOf(t, err)
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1, "only %s should fail: %v", tt.field, fields)
		})
	}
}

func TestValidateSubmissionSizeLimitIsInclusive(t *testing.T) {
	const limit = 64
	data := make([]byte, limit)
	copy(data, pngData)

	form := validForm()
	form.AadhaarFront = imageFile(data)
	_, err := ValidateSubmission(form, testNow, limit)
	require.NoError(t, err)

	form.AadhaarFront = imageFile(append(data, 0))
	_, err = ValidateSubmission(form, testNow, limit)
	assert.Contains(t, fieldsOf(t, err), FieldAadhaarFront)
}

func TestNormalizeFormIdempotent(t *testing.T) {
	form := validForm()
	form.PANNumber = " abcde 1234f "
	form.AadhaarNumber = "2345-6789-0123"
	form.IFSCCode = " hdfc0001234"
	form.FullName = " <i>Ravi</i>  Kumar & Sons "
	form.BankName = "State Bank &amp; India"
	form.UPIID = " ravi @ okhdfc "

	once := NormalizeForm(form)
	twice := NormalizeForm(once)
	assert.Equal(t, once, twice)

	form.FullName = "Ravi &lt;b&gt;Kumar"
	form.AccountHolderName = "&amp;lt;i&amp;gt;Ravi&amp;lt;/i&amp;gt; Kumar"
	form.BankName = "HDFC &lt;script&gt;x&lt;/script&gt;Bank"
	once = NormalizeForm(form)
	assert.Equal(t, once, NormalizeForm(once))
	assert.Equal(t, "Ravi Kumar", once.FullName)
}
