package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFeedbackComments 评论最大字符数
const MaxFeedbackComments = 1000

// UserFeedback 用户对一次模拟的反馈
type UserFeedback struct {
	SessionID           string    `json:"sessionId"`
	Scenario            string    `json:"scenario"`
	SeriousRating       int       `json:"seriousRating"`
	FunRating           int       `json:"funRating"`
	OverallSatisfaction int       `json:"overallSatisfaction"`
	Comments            string    `json:"comments,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// Validate 只做范围校验；Timestamp 为零值时补为当前时间
func (f *UserFeedback) Validate() error {
	if f == nil {
		return errors.New("feedback is required")
	}
	if strings.TrimSpace(f.SessionID) == "" {
		return errors.New("sessionId is required")
	}
	if strings.TrimSpace(f.Scenario) == "" {
		return errors.New("scenario is required")
	}

	ratings := []struct {
		name  string
		value int
	}{
		{"seriousRating", f.SeriousRating},
		{"funRating", f.FunRating},
		{"overallSatisfaction", f.OverallSatisfaction},
	}
	for _, r := range ratings {
		if r.value < 1 || r.value > 5 {
			return fmt.Errorf("%s must be between 1 and 5, got %d", r.name, r.value)
		}
	}

	if utf8.RuneCountInString(f.Comments) > MaxFeedbackComments {
		return fmt.Errorf("comments must be at most %d characters", MaxFeedbackComments)
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}
	return nil
}
