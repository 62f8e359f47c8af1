package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidConfiguration, err.Code)
	suite.Equal("invalid configuration", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeDataUnavailable, "no bars returned for %s", "AAPL")
	suite.NotNil(err)
	suite.Equal(ErrCodeDataUnavailable, err.Code)
	suite.Equal("no bars returned for AAPL", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeQueryFailed, "failed to read bars", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeQueryFailed, err.Code)
	suite.Equal("failed to read bars", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeQueryFailed, cause, "failed to read bars for symbol: %s", "AAPL")
	suite.NotNil(err)
	suite.Equal(ErrCodeQueryFailed, err.Code)
	suite.Equal("failed to read bars for symbol: AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.Equal("[101] invalid configuration", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no tradable data", cause)
	suite.Equal("[200] no tradable data: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no tradable data", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInsufficientHistory, "not enough bars")
	suite.Equal(ErrCodeInsufficientHistory, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	inner := New(ErrCodeInsufficientHistory, "not enough bars")
	outer := fmt.Errorf("run failed: %w", inner)
	suite.Equal(ErrCodeInsufficientHistory, GetCode(outer))
}

func (suite *ErrorTestSuite) TestGetCodeUnknown() {
	err := errors.New("plain error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeDataUnavailable, "no tradable data")
	suite.True(HasCode(err, ErrCodeDataUnavailable))
	suite.False(HasCode(err, ErrCodeInsufficientHistory))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	inner := New(ErrCodeDataUnavailable, "no tradable data")
	outer := fmt.Errorf("run failed: %w", inner)

	suite.True(Is(outer, inner))

	var target *Error
	suite.True(As(outer, &target))
	suite.Equal(ErrCodeDataUnavailable, target.Code)
}
