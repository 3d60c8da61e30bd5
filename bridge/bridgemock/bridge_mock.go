// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridgemock is a mockgen-style mock of bridge.L1Bridge, kept
// hand-written (mockgen itself isn't run as part of this build) but
// following its generated-code shape so tests can set call expectations
// the same way they would against a generated mock.
package bridgemock

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	bridge "github.com/qrollup/node/bridge"
)

// MockL1Bridge is a mock of the bridge.L1Bridge interface.
type MockL1Bridge struct {
	ctrl     *gomock.Controller
	recorder *MockL1BridgeMockRecorder
}

// MockL1BridgeMockRecorder is the mock recorder for MockL1Bridge.
type MockL1BridgeMockRecorder struct {
	mock *MockL1Bridge
}

// NewMockL1Bridge creates a new mock instance.
func NewMockL1Bridge(ctrl *gomock.Controller) *MockL1Bridge {
	m := &MockL1Bridge{ctrl: ctrl}
	m.recorder = &MockL1BridgeMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockL1Bridge) EXPECT() *MockL1BridgeMockRecorder {
	return m.recorder
}

// SubmitCommitment mocks base method.
func (m *MockL1Bridge) SubmitCommitment(c bridge.Commitment) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SubmitCommitment", c)
	ret0, _ := ret[0].(error)
	return ret0
}

// SubmitCommitment indicates an expected call.
func (mr *MockL1BridgeMockRecorder) SubmitCommitment(c interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SubmitCommitment", reflect.TypeOf((*MockL1Bridge)(nil).SubmitCommitment), c)
}

// GetPendingDeposits mocks base method.
func (m *MockL1Bridge) GetPendingDeposits() ([]bridge.DepositEvent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPendingDeposits")
	ret0, _ := ret[0].([]bridge.DepositEvent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetPendingDeposits indicates an expected call.
func (mr *MockL1BridgeMockRecorder) GetPendingDeposits() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPendingDeposits", reflect.TypeOf((*MockL1Bridge)(nil).GetPendingDeposits))
}

// ProcessWithdrawal mocks base method.
func (m *MockL1Bridge) ProcessWithdrawal(w bridge.WithdrawalEvent) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ProcessWithdrawal", w)
	ret0, _ := ret[0].(error)
	return ret0
}

// ProcessWithdrawal indicates an expected call.
func (mr *MockL1BridgeMockRecorder) ProcessWithdrawal(w interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ProcessWithdrawal", reflect.TypeOf((*MockL1Bridge)(nil).ProcessWithdrawal), w)
}

// SubmitFraudProof mocks base method.
func (m *MockL1Bridge) SubmitFraudProof(invalidProof []byte, correctStateSnapshot []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SubmitFraudProof", invalidProof, correctStateSnapshot)
	ret0, _ := ret[0].(error)
	return ret0
}

// SubmitFraudProof indicates an expected call.
func (mr *MockL1BridgeMockRecorder) SubmitFraudProof(invalidProof, correctStateSnapshot interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SubmitFraudProof", reflect.TypeOf((*MockL1Bridge)(nil).SubmitFraudProof), invalidProof, correctStateSnapshot)
}

// TriggerEmergencyShutdown mocks base method.
func (m *MockL1Bridge) TriggerEmergencyShutdown() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TriggerEmergencyShutdown")
	ret0, _ := ret[0].(error)
	return ret0
}

// TriggerEmergencyShutdown indicates an expected call.
func (mr *MockL1BridgeMockRecorder) TriggerEmergencyShutdown() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TriggerEmergencyShutdown", reflect.TypeOf((*MockL1Bridge)(nil).TriggerEmergencyShutdown))
}

// IsEmergencyMode mocks base method.
func (m *MockL1Bridge) IsEmergencyMode() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsEmergencyMode")
	ret0, _ := ret[0].(bool)
	return ret0
}

// IsEmergencyMode indicates an expected call.
func (mr *MockL1BridgeMockRecorder) IsEmergencyMode() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsEmergencyMode", reflect.TypeOf((*MockL1Bridge)(nil).IsEmergencyMode))
}

var _ bridge.L1Bridge = (*MockL1Bridge)(nil)
