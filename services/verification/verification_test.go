package verification

import (
	"testing"

	verificationModel "cylinder-booking/models/verification"
	"cylinder-booking/services/mailer"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mailerStub struct {
	sent []string
}

func (m *mailerStub) Send(to, subject, body string, attachments ...mailer.Attachment) error {
	m.sent = append(m.sent, to)
	return nil
}

func setup(t *testing.T) (*Service, *mailerStub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&verificationModel.Verification{}))

	stub := &mailerStub{}
	return NewService(db, stub), stub
}

func TestSendCodeCreatesAndEmails(t *testing.T) {
	svc, stub := setup(t)

	record, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	assert.Len(t, record.Code, 6)
	assert.False(t, record.IsUsed)
	assert.Equal(t, []string{"rina@example.com"}, stub.sent)
}

func TestSendCodeReusesActiveCode(t *testing.T) {
	svc, stub := setup(t)

	first, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	second, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, stub.sent, 1, "no second email while the first code is live")
}

func TestVerifyCodeHappyPath(t *testing.T) {
	svc, _ := setup(t)

	record, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	ok, err := svc.VerifyCode("rina@example.com", record.Code, verificationModel.PurposeEmailVerify)
	require.NoError(t, err)
	assert.True(t, ok)

	// A used code cannot be replayed.
	ok, err = svc.VerifyCode("rina@example.com", record.Code, verificationModel.PurposeEmailVerify)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyCodeWrongCodeCountsRetries(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	ok, err := svc.VerifyCode("rina@example.com", "000000", verificationModel.PurposeEmailVerify)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempts remaining")
}

func TestVerifyCodeBlocksAfterMaxRetries(t *testing.T) {
	svc, _ := setup(t)

	record, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, verifyErr := svc.VerifyCode("rina@example.com", "000000", verificationModel.PurposeEmailVerify)
		assert.False(t, ok)
		require.Error(t, verifyErr)
	}

	// The real code no longer works once blocked.
	ok, err := svc.VerifyCode("rina@example.com", record.Code, verificationModel.PurposeEmailVerify)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrBlocked)

	// Requesting a fresh code while blocked is refused too.
	_, err = svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestVerifyCodeWithoutRecord(t *testing.T) {
	svc, _ := setup(t)

	ok, err := svc.VerifyCode("nobody@example.com", "123456", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurposesAreIsolated(t *testing.T) {
	svc, _ := setup(t)

	record, err := svc.SendCode("rina@example.com", verificationModel.PurposeEmailVerify)
	require.NoError(t, err)

	ok, err := svc.VerifyCode("rina@example.com", record.Code, verificationModel.PurposePasswordReset)
	require.NoError(t, err)
	assert.False(t, ok)
}
