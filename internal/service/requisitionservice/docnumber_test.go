package requisitionservice_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/service/requisitionservice"
)

func TestIssue_FormatsSequence(t *testing.T) {
	seq := new(MockSequence)
	seq.On("Next", mock.Anything, "lastBillNumber").Return(int64(42), nil).Once()

	issuer := requisitionservice.NewDocumentNumberIssuer(seq, "lastBillNumber", clock.NewFixed(today))
	number, err := issuer.Issue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "IB-20240501-0042", number)
	seq.AssertExpectations(t)
}

func TestIssue_StrictlyIncreasing(t *testing.T) {
	seq := new(MockSequence)
	for i := int64(1); i <= 3; i++ {
		seq.On("Next", mock.Anything, mock.Anything).Return(i, nil).Once()
	}

	issuer := requisitionservice.NewDocumentNumberIssuer(seq, "lastBillNumber", clock.NewFixed(today))
	pattern := regexp.MustCompile(`^IB-\d{8}-\d{4}$`)

	var got []string
	for i := 0; i < 3; i++ {
		n, err := issuer.Issue(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
		got = append(got, n)
	}
	assert.Equal(t, []string{"IB-20240501-0001", "IB-20240501-0002", "IB-20240501-0003"}, got)
}

func TestIssue_StoreError(t *testing.T) {
	seq := new(MockSequence)
	cause := errors.New("disk full")
	seq.On("Next", mock.Anything, mock.Anything).Return(int64(0), cause)

	issuer := requisitionservice.NewDocumentNumberIssuer(seq, "lastBillNumber", clock.NewFixed(today))
	_, err := issuer.Issue(context.Background())

	assert.ErrorIs(t, err, cause)
}

func TestPlaceholder(t *testing.T) {
	issuer := requisitionservice.NewDocumentNumberIssuer(new(MockSequence), "lastBillNumber", clock.NewFixed(today))
	assert.Equal(t, "IB-20240501-????", issuer.Placeholder())
}
