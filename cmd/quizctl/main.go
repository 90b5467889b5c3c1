// Command quizctl runs the quiz migrator, projections and grader against local JSON files
// and issues service tokens for the review API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/grading"
	"github.com/stemsi/exstem-quizzes/internal/migration"
	"github.com/stemsi/exstem-quizzes/internal/projection"
	"github.com/stemsi/exstem-quizzes/internal/service"
	"golang.org/x/term"
)

const usage = `Usage: quizctl <command> [args]

Commands:
  migrate [-kind k] <spec.json>        print the spec in the current format; k is
                                       private (default), public or model-solution
  public <spec.json>                   print the public projection
  model-solution <spec.json>           print the model solution projection
  grade <spec.json> <answer.json>      grade an answer
  token [-subject s] [-scopes a,b] [-ttl d]
                                       sign a service token with SERVICE_JWT_SECRET`

var errUsage = errors.New("invalid usage")

func main() {
	indent := term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(os.Args[1:], os.Stdout, indent); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "quizctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, indent bool) error {
	if len(args) == 0 {
		return errUsage
	}

	var (
		result any
		err    error
	)
	switch cmd, rest := args[0], args[1:]; cmd {
	case "migrate":
		result, err = migrate(rest)
	case "public", "model-solution":
		if len(rest) != 1 {
			return errUsage
		}
		result, err = project(cmd, rest[0])
	case "grade":
		if len(rest) != 2 {
			return errUsage
		}
		result, err = grade(rest[0], rest[1])
	case "token":
		var token string
		token, err = issueToken(rest)
		if err == nil {
			_, err = fmt.Fprintln(out, token)
		}
		return err
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	return writeJSON(out, result, indent)
}

// migrate upgrades a legacy document of the given kind without projecting it, so a
// public or model-solution document stays in its own shape.
func migrate(args []string) (any, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	kind := fs.String("kind", "private", "document kind: private, public or model-solution")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return nil, errUsage
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	switch *kind {
	case "private":
		return migration.MigratePrivateSpec(raw)
	case "public":
		return migration.MigratePublicSpec(raw)
	case "model-solution":
		return migration.MigrateModelSolutionSpec(raw)
	}
	return nil, errUsage
}

func project(cmd, specPath string) (any, error) {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return nil, err
	}
	quiz, err := migration.MigratePrivateSpec(raw)
	if err != nil {
		return nil, err
	}
	if cmd == "public" {
		return projection.ToPublicSpec(quiz)
	}
	return projection.ToModelSolutionSpec(quiz)
}

func grade(specPath, answerPath string) (any, error) {
	rawSpec, err := os.ReadFile(specPath)
	if err != nil {
		return nil, err
	}
	rawAnswer, err := os.ReadFile(answerPath)
	if err != nil {
		return nil, err
	}
	quiz, err := migration.MigratePrivateSpec(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("spec: %w", err)
	}
	answer, err := migration.MigrateUserAnswer(rawAnswer, quiz)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	return grading.Grade(quiz, answer)
}

func issueToken(args []string) (string, error) {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "quizctl", "token subject")
	scopes := fs.String("scopes", service.ScopeGradingsRead+","+service.ScopeGradingsReview, "comma-separated scopes")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return "", errUsage
	}

	var granted []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			granted = append(granted, s)
		}
	}
	return service.NewAuthService(config.Load()).GenerateServiceToken(*subject, granted, *ttl)
}

func writeJSON(out io.Writer, v any, indent bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
