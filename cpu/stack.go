// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Stack is the core's last-in first-out word stack.
type Stack struct {
	Limit int     // Maximum depth, or zero for unbounded.
	Data  []int32 // Stack contents, top of stack last.
}

func (s *Stack) Push(value int32) {
	s.Data = append(s.Data, value)
}

func (s *Stack) Pop() (value int32, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Len() int {
	return len(s.Data)
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

// Room returns true if n more values can be pushed.
func (s *Stack) Room(n int) bool {
	return s.Limit == 0 || len(s.Data)+n <= s.Limit
}

func (s *Stack) Full() bool {
	return !s.Room(1)
}

func (s *Stack) Peek() (value int32, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
