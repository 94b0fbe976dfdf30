package common

import (
	"regexp"
	"sync"
)

var regexCache sync.Map

// MatchRegex matches text against pattern, compiling each distinct pattern once.
// Returns an error if the pattern is invalid.
func MatchRegex(pattern, text string) (bool, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re.MatchString(text), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	regexCache.Store(pattern, re)
	return re.MatchString(text), nil
}
