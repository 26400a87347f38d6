package relay

import "slices"

// Reduce applies an action to a state and returns the next state. It is a
// pure function: the input state is never mutated, and any change happens
// on a copy. Actions that change nothing return the same *State, so
// callers can use pointer equality to skip redundant work.
func Reduce(s *State, a Action) *State {
	switch a := a.(type) {
	case TogglePanel:
		next := s.clone()
		next.Open = !s.Open
		return next

	case OpenPanel:
		if s.Open {
			return s
		}
		next := s.clone()
		next.Open = true
		return next

	case ClosePanel:
		if !s.Open {
			return s
		}
		next := s.clone()
		next.Open = false
		return next

	case SetSessionID:
		if s.SessionID == a.ID {
			return s
		}
		next := s.clone()
		next.SessionID = a.ID
		return next

	case AddUserMessage:
		msg := a.Message
		msg.Role = RoleUser
		return s.appendMessage(msg)

	case StartAssistantMessage:
		msg := a.Message
		msg.Role = RoleAssistant
		msg.Content = ""
		return s.appendMessage(msg)

	case AppendContentDelta:
		i, ok := s.lastAssistant()
		if !ok {
			return s
		}
		next := s.clone()
		next.Messages = slices.Clone(s.Messages)
		next.Messages[i].Content += a.Text
		return next

	case AddFunctionCall:
		i, ok := s.lastAssistant()
		if !ok {
			return s
		}
		call := a.Call
		call.Status = ToolCallRunning
		call.Result = ""
		next := s.clone()
		next.Messages = slices.Clone(s.Messages)
		msg := &next.Messages[i]
		msg.ToolCalls = append(slices.Clone(msg.ToolCalls), call)
		return next

	case UpdateFunctionResult:
		i, ok := s.lastAssistant()
		if !ok || len(s.Messages[i].ToolCalls) == 0 {
			return s
		}
		if !slices.ContainsFunc(s.Messages[i].ToolCalls, func(tc ToolCall) bool {
			return tc.ID == a.ToolUseID
		}) {
			return s
		}
		next := s.clone()
		next.Messages = slices.Clone(s.Messages)
		msg := &next.Messages[i]
		calls := make([]ToolCall, len(msg.ToolCalls))
		for j, tc := range msg.ToolCalls {
			if tc.ID == a.ToolUseID {
				tc.Status = ToolCallCompleted
				tc.Result = a.Result
			}
			calls[j] = tc
		}
		msg.ToolCalls = calls
		return next

	case FinalizeAssistantMessage:
		i, ok := s.lastAssistant()
		if !ok {
			return s
		}
		next := s.clone()
		next.Messages = slices.Clone(s.Messages)
		next.Messages[i].TokensUsed = a.TokensUsed
		next.Messages[i].LatencyMS = a.LatencyMS
		next.Streaming = false
		return next

	case SetStreaming:
		if s.Streaming == a.Streaming {
			return s
		}
		next := s.clone()
		next.Streaming = a.Streaming
		return next

	case SetError:
		if s.Err == a.Message {
			return s
		}
		next := s.clone()
		next.Err = a.Message
		return next

	case SetRateLimit:
		if s.RateLimit == nil && a.Info == nil {
			return s
		}
		next := s.clone()
		next.RateLimit = a.Info
		return next

	case ClearSession:
		next := s.clone()
		next.SessionID = ""
		next.Messages = nil
		next.Err = ""
		next.RateLimit = nil
		return next

	case LoadSession:
		next := s.clone()
		next.SessionID = a.SessionID
		next.Messages = slices.Clone(a.Messages)
		return next
	}

	// Unknown actions return the same reference so upstream equality
	// checks stay cheap.
	return s
}

func (s *State) appendMessage(msg Message) *State {
	next := s.clone()
	next.Messages = make([]Message, len(s.Messages)+1)
	copy(next.Messages, s.Messages)
	next.Messages[len(s.Messages)] = msg
	return next
}
