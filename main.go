package main

import (
	"time"

	"github.com/anoixa/picshare/cmd"
)

func init() {
	// 过期判断全部基于 UTC
	time.Local = time.UTC
}

func main() {
	cmd.Execute()
}
