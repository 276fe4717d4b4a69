package mocks

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
	mock "github.com/stretchr/testify/mock"
)

type MockRestraintBackend struct {
	mock.Mock
}

type MockRestraintBackend_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRestraintBackend) EXPECT() *MockRestraintBackend_Expecter {
	return &MockRestraintBackend_Expecter{mock: &_m.Mock}
}

func (_m *MockRestraintBackend) GetRestraints(ctx context.Context) (domain.RestraintSet, error) {
	ret := _m.Called(ctx)
	if len(ret) == 0 {
		panic("no return value specified for GetRestraints")
	}
	return ret.Get(0).(domain.RestraintSet), ret.Error(1)
}

type MockRestraintBackend_GetRestraints_Call struct {
	*mock.Call
}

func (_e *MockRestraintBackend_Expecter) GetRestraints(ctx interface{}) *MockRestraintBackend_GetRestraints_Call {
	return &MockRestraintBackend_GetRestraints_Call{Call: _e.mock.On("GetRestraints", ctx)}
}

func (_c *MockRestraintBackend_GetRestraints_Call) Return(_a0 domain.RestraintSet, _a1 error) *MockRestraintBackend_GetRestraints_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_m *MockRestraintBackend) UpdateRestraint(ctx context.Context, update ports.RestraintUpdate) (string, error) {
	ret := _m.Called(ctx, update)
	if len(ret) == 0 {
		panic("no return value specified for UpdateRestraint")
	}
	return ret.String(0), ret.Error(1)
}

type MockRestraintBackend_UpdateRestraint_Call struct {
	*mock.Call
}

func (_e *MockRestraintBackend_Expecter) UpdateRestraint(ctx interface{}, update interface{}) *MockRestraintBackend_UpdateRestraint_Call {
	return &MockRestraintBackend_UpdateRestraint_Call{Call: _e.mock.On("UpdateRestraint", ctx, update)}
}

func (_c *MockRestraintBackend_UpdateRestraint_Call) Return(_a0 string, _a1 error) *MockRestraintBackend_UpdateRestraint_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_m *MockRestraintBackend) GetAuditTrail(ctx context.Context, limit int) (domain.AuditTrail, error) {
	ret := _m.Called(ctx, limit)
	if len(ret) == 0 {
		panic("no return value specified for GetAuditTrail")
	}
	return ret.Get(0).(domain.AuditTrail), ret.Error(1)
}

type MockRestraintBackend_GetAuditTrail_Call struct {
	*mock.Call
}

func (_e *MockRestraintBackend_Expecter) GetAuditTrail(ctx interface{}, limit interface{}) *MockRestraintBackend_GetAuditTrail_Call {
	return &MockRestraintBackend_GetAuditTrail_Call{Call: _e.mock.On("GetAuditTrail", ctx, limit)}
}

func (_c *MockRestraintBackend_GetAuditTrail_Call) Return(_a0 domain.AuditTrail, _a1 error) *MockRestraintBackend_GetAuditTrail_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func NewMockRestraintBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRestraintBackend {
	m := &MockRestraintBackend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
