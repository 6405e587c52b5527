package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"maskedvaccine/internal/domain/ledger"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) Address() string {
	return m.Called().String(0)
}

func (m *MockEventReader) Events(ctx context.Context, filter ledger.EventFilter) ([]ledger.Log, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Log), args.Error(1)
}

func TestHandler_healthCheck(t *testing.T) {
	const contract = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	filter := ledger.EventFilter{Name: ledger.EventRecordCreated}

	tests := []struct {
		name          string
		logs          []ledger.Log
		eventsErr     error
		expectedCount int
		expectedCode  int
	}{
		{
			name:          "empty ledger",
			logs:          []ledger.Log{},
			expectedCount: 0,
		},
		{
			name:          "counts created records",
			logs:          []ledger.Log{{RecordID: 1}, {RecordID: 2}},
			expectedCount: 2,
		},
		{
			name:         "storage failure",
			eventsErr:    errors.New("connection refused"),
			expectedCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(MockEventReader)
			if tt.eventsErr != nil {
				reader.On("Events", mock.Anything, filter).Return(nil, tt.eventsErr)
			} else {
				reader.On("Events", mock.Anything, filter).Return(tt.logs, nil)
				reader.On("Address").Return(contract)
			}
			handler := NewHandler(reader, 31337, slog.Default(), huma.Middlewares{})

			output, err := handler.healthCheck(context.Background(), &Input{})

			if tt.expectedCode != 0 {
				require.Error(t, err)
				var se huma.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.expectedCode, se.GetStatus())
				reader.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "OK", output.Body.Status)
			assert.Equal(t, uint64(31337), output.Body.ChainID)
			assert.Equal(t, contract, output.Body.Contract)
			assert.Equal(t, tt.expectedCount, output.Body.Records)
			reader.AssertExpectations(t)
		})
	}
}
