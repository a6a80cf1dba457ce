package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/blockmark/internal/commands"
	"github.com/gerunddev/blockmark/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "convert", "c":
		commands.Convert(os.Args[2:])
	case "import":
		commands.Import(os.Args[2:])
	case "inspect":
		commands.Inspect(os.Args[2:])
	case "batch":
		commands.Batch(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "preview":
		commands.Preview(os.Args[2:])
	case "render":
		commands.Render(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("blockmark v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`blockmark - Convert markdown into structured content blocks

Usage:
  blockmark <command> [options]

Commands:
  convert     Convert a markdown file (or stdin) to block JSON
  import      Convert markdown and merge it into a document's content
  inspect     Summarize the blocks stored in a document
  batch       Convert every changed file in the source directory
  watch       Run batch conversion on an interval
  preview     Paste markdown and preview the converted blocks
  render      Show converted markdown rendered back for the terminal
  version     Show version information
  help        Show this help message

Examples:
  blockmark convert post.md
  cat post.md | blockmark convert --compact
  blockmark import post.md --into post.json
  blockmark import post.md --into post.json --replace --meta
  blockmark inspect post.json
  blockmark batch --dry-run
  blockmark watch --interval 10s
  blockmark preview draft.md --out draft.json
  blockmark render post.md

Configuration:
  Config file: %s
  State file:  %s
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
