/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package hstate implements the handle lifecycle state machine (§3):
//
//	NEW --open--> HEADER --read next--> DATA --read/skip--> HEADER
//	  |                     |
//	  |                     +--> EOF
//	  +--> FATAL (terminal; only close/free permitted)
//	  CLOSED (terminal; only free permitted)
//
// Every public entry point on a reader or writer handle guards itself by
// calling Require before doing any work; a state violation is a programmer
// error and panics rather than returning a recoverable error (§7).
package hstate

import "fmt"

type State uint8

const (
	New State = iota
	Header
	Data
	EOF
	Fatal
	Closed
)

func (s State) String() string {
	switch s {
	case New:
		return "NEW"
	case Header:
		return "HEADER"
	case Data:
		return "DATA"
	case EOF:
		return "EOF"
	case Fatal:
		return "FATAL"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Machine is an embeddable, non-concurrent state holder. A Handle is owned
// by exactly one thread at a time (§5); the library performs no locking.
type Machine struct {
	cur State
}

func NewMachine() *Machine {
	return &Machine{cur: New}
}

func (m *Machine) Current() State {
	return m.cur
}

// Require panics with an "illegal usage" diagnostic if the machine is not
// currently in one of allowed. FATAL and CLOSED are always terminal: once
// set, only operations that explicitly allow Fatal/Closed (close, free) may
// proceed.
func (m *Machine) Require(op string, allowed ...State) {
	for _, a := range allowed {
		if m.cur == a {
			return
		}
	}
	panic(fmt.Errorf("illegal usage: operation %q not permitted in state %s", op, m.cur))
}

// Transition moves the machine to next unconditionally. Callers are
// expected to have already validated the move via Require.
func (m *Machine) Transition(next State) {
	m.cur = next
}

// ToFatal is the one transition that is always legal from any non-terminal
// state: it is sticky, and after it only Close/Free remain permitted.
func (m *Machine) ToFatal() {
	if m.cur == Closed {
		return
	}
	m.cur = Fatal
}
