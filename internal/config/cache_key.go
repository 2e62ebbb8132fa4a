package config

import "fmt"

type CacheKeyStruct struct{}

// StudentLoginKey returns the cache key holding a student's active JWT ID.
func (r *CacheKeyStruct) StudentLoginKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// PracticeAnswersKey returns the cache key for the answer mirror of a
// student's active practice session.
func (r *CacheKeyStruct) PracticeAnswersKey(studentID string) string {
	return fmt.Sprintf("student:%s:practice:answers", studentID)
}

// PracticeSessionKey returns the cache key describing a student's active
// practice session (session id + start time), used for observability and
// reload diagnostics.
func (r *CacheKeyStruct) PracticeSessionKey(studentID string) string {
	return fmt.Sprintf("student:%s:practice:session", studentID)
}

var CacheKey = &CacheKeyStruct{}
