package tui

import (
	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/ports"
)

type panelLoadedMsg struct {
	panel string
	gen   uint64
	view  application.View
	err   error
}

// EventMsg carries one pushed backend event into the program.
type EventMsg struct {
	Event ports.Event
}

type saveDoneMsg struct {
	result application.SaveResult
	err    error
}

type repayDoneMsg struct {
	tally application.RepayTally
	err   error
}

// actionDoneMsg reports a panel mutation; the panel is reloaded afterwards.
type actionDoneMsg struct {
	panel  string
	text   string
	err    error
	record func()
}

type toastExpiredMsg struct {
	seq int
}

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)
