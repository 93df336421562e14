package main

import (
	"fmt"
	"os"

	"github.com/jensroland/fix-ascii-art/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		cmd.RunFix(nil, version)
		return
	}

	switch os.Args[1] {
	case "undo":
		cmd.RunUndo(os.Args[2:])
	case "history":
		cmd.RunHistory(os.Args[2:])
	case "stats":
		cmd.RunStats(os.Args[2:])
	case "watch":
		cmd.RunWatch(os.Args[2:])
	case "hook":
		cmd.RunHook(os.Args[2:])
	case "enable":
		cmd.RunEnable(os.Args[2:])
	case "disable":
		cmd.RunDisable(os.Args[2:])
	case "--version":
		fmt.Println("fix-ascii-art", version)
	default:
		cmd.RunFix(os.Args[1:], version)
	}
}
