package userapi

import "time"

func nowRef() *time.Time {
	t := time.Now()
	return &t
}
