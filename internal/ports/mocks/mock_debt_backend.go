package mocks

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

type MockDebtBackend struct {
	mock.Mock
}

type MockDebtBackend_Expecter struct {
	mock *mock.Mock
}

func (_m *MockDebtBackend) EXPECT() *MockDebtBackend_Expecter {
	return &MockDebtBackend_Expecter{mock: &_m.Mock}
}

func (_m *MockDebtBackend) GetDebt(ctx context.Context) (domain.DebtSummary, error) {
	ret := _m.Called(ctx)
	if len(ret) == 0 {
		panic("no return value specified for GetDebt")
	}
	return ret.Get(0).(domain.DebtSummary), ret.Error(1)
}

type MockDebtBackend_GetDebt_Call struct {
	*mock.Call
}

func (_e *MockDebtBackend_Expecter) GetDebt(ctx interface{}) *MockDebtBackend_GetDebt_Call {
	return &MockDebtBackend_GetDebt_Call{Call: _e.mock.On("GetDebt", ctx)}
}

func (_c *MockDebtBackend_GetDebt_Call) Return(_a0 domain.DebtSummary, _a1 error) *MockDebtBackend_GetDebt_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_m *MockDebtBackend) RepayDebt(ctx context.Context, decisionID string) (domain.DebtSummary, error) {
	ret := _m.Called(ctx, decisionID)
	if len(ret) == 0 {
		panic("no return value specified for RepayDebt")
	}
	return ret.Get(0).(domain.DebtSummary), ret.Error(1)
}

type MockDebtBackend_RepayDebt_Call struct {
	*mock.Call
}

func (_e *MockDebtBackend_Expecter) RepayDebt(ctx interface{}, decisionID interface{}) *MockDebtBackend_RepayDebt_Call {
	return &MockDebtBackend_RepayDebt_Call{Call: _e.mock.On("RepayDebt", ctx, decisionID)}
}

func (_c *MockDebtBackend_RepayDebt_Call) Return(_a0 domain.DebtSummary, _a1 error) *MockDebtBackend_RepayDebt_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func NewMockDebtBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDebtBackend {
	m := &MockDebtBackend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
