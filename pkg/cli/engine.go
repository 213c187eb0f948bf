package cli

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shea/pkg/display"
)

//go:embed cli.def
var DefaultDSL string

// Mutable
type Engine struct {
	GlobalFlags []*Flag
	Commands    []*Command
	Topics      []*Topic
	Handlers    map[string]Handler
	Theme       *display.Theme
	// Out receives help text.
	Out io.Writer
}

// MakeEngine builds the engine for the embedded command definitions.
func MakeEngine() (*Engine, error) {
	return NewEngine(DefaultDSL)
}

func NewEngine(dsl string) (*Engine, error) {
	e := &Engine{
		Handlers: make(map[string]Handler),
		Theme:    display.DefaultTheme(),
		Out:      os.Stdout,
	}
	if err := e.parseDSL(dsl); err != nil {
		return nil, err
	}
	e.Commands = append(e.Commands, &Command{
		Name: "help",
		Desc: "Show help information",
	})
	return e, nil
}

// Register binds a handler to a command path such as "list" or "parent/child".
func (e *Engine) Register(cmdPath string, h Handler) {
	e.Handlers[cmdPath] = h
}

func (e *Engine) parseDSL(dsl string) error {
	p := newParser(dsl, e)
	return p.parse()
}

type ParseResult struct {
	Invocation *Invocation
	Help       bool
	HelpArgs   []string
	Error      error
}

// Run parses args and executes the matching handler, or prints help.
func (e *Engine) Run(ctx context.Context, args []string) (*ExecutionResult, error) {
	res := e.Parse(args)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Help {
		e.PrintHelp(res.HelpArgs...)
		return &ExecutionResult{ExitCode: 0}, nil
	}
	return e.Execute(ctx, res.Invocation)
}

func (e *Engine) Parse(args []string) *ParseResult {
	res := &ParseResult{
		Invocation: &Invocation{
			Args:   make(map[string]string),
			Flags:  make(map[string]any),
			Global: make(map[string]any),
		},
	}
	var remaining []string
	// Global flags and help may appear anywhere before "--".
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}
		if arg == "--help" || arg == "-h" {
			res.Help = true
			continue
		}
		n, err := e.matchFlag(e.GlobalFlags, args, i, res.Invocation.Global)
		if err != nil {
			res.Error = err
			return res
		}
		if n == 0 {
			remaining = append(remaining, arg)
			continue
		}
		i += n - 1
	}

	if res.Help {
		res.HelpArgs = positional(remaining)
		return res
	}

	if len(remaining) == 0 {
		// a bare --version needs no command
		if _, ok := res.Invocation.Global["version"]; !ok {
			res.Help = true
		}
		return res
	}

	inv, help, err := e.resolve(res.Invocation, e.Commands, remaining)
	if err != nil {
		res.Error = err
		return res
	}
	if help != nil {
		res.Help = true
		res.HelpArgs = help
		return res
	}
	res.Invocation = inv
	return res
}

// matchFlag tries to read flag at args[i] from flags into dst. It returns the
// number of args consumed, 0 if args[i] is not one of flags.
func (e *Engine) matchFlag(flags []*Flag, args []string, i int, dst map[string]any) (int, error) {
	arg := args[i]
	name, value, hasValue := arg, "", false
	if strings.HasPrefix(arg, "--") {
		if k, v, ok := strings.Cut(arg, "="); ok {
			name, value, hasValue = k, v, true
		}
	}
	for _, f := range flags {
		if name != "--"+f.Name && (f.Short == "" || name != "-"+f.Short) {
			continue
		}
		if f.Type == "bool" {
			if hasValue {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return 0, usageErrorf("invalid value %q for --%s", value, f.Name)
				}
				dst[f.Name] = b
				return 1, nil
			}
			dst[f.Name] = true
			return 1, nil
		}
		n := 1
		if !hasValue {
			if i+1 >= len(args) {
				return 0, usageErrorf("flag --%s requires a value", f.Name)
			}
			value = args[i+1]
			n = 2
		}
		if f.Type == "int" {
			v, err := strconv.Atoi(value)
			if err != nil {
				return 0, usageErrorf("invalid value %q for --%s: must be an integer", value, f.Name)
			}
			dst[f.Name] = v
			return n, nil
		}
		dst[f.Name] = value
		return n, nil
	}
	return 0, nil
}

func (e *Engine) Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	path := getCmdPath(inv.Command)
	if h, ok := e.Handlers[path]; ok {
		return h.Execute(ctx, inv)
	}
	return nil, fmt.Errorf("no handler registered for command: %s", path)
}

// resolve finds the command named by args. A non-nil help slice means help
// should be shown for that subject instead.
func (e *Engine) resolve(inv *Invocation, cmds []*Command, args []string) (*Invocation, []string, error) {
	word := args[0]
	var matches []*Command
	for _, c := range cmds {
		if c.Name == word {
			matches = []*Command{c}
			break
		}
		if strings.HasPrefix(c.Name, word) {
			matches = append(matches, c)
		}
	}
	if len(matches) > 1 {
		var names []string
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, nil, usageErrorf("ambiguous command: %s (candidates: %s)", word, strings.Join(names, ", "))
	}
	if len(matches) == 0 {
		if len(cmds) == len(e.Commands) {
			return nil, nil, usageErrorf("unknown command: %s", word)
		}
		return nil, nil, usageErrorf("unknown subcommand: %s", word)
	}

	cmd := matches[0]
	rest := args[1:]
	if cmd.Name == "help" && cmd.Parent == nil {
		return nil, append([]string{}, positional(rest)...), nil
	}
	if len(cmd.Subs) > 0 {
		if len(rest) == 0 {
			return nil, commandWords(cmd), nil
		}
		subInv, help, err := e.resolve(inv, cmd.Subs, rest)
		if err != nil && IsUsage(err) && strings.HasPrefix(err.Error(), "unknown subcommand") {
			// show what the parent offers
			return nil, commandWords(cmd), nil
		}
		return subInv, help, err
	}
	inv.Command = cmd
	if err := e.parseParams(inv, cmd, rest); err != nil {
		return nil, nil, err
	}
	return inv, nil, nil
}

func (e *Engine) parseParams(inv *Invocation, cmd *Command, args []string) error {
	var pos []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			pos = append(pos, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			pos = append(pos, arg)
			continue
		}
		n, err := e.matchFlag(cmd.Flags, args, i, inv.Flags)
		if err != nil {
			return err
		}
		if n == 0 {
			n, err = e.matchShortGroup(cmd.Flags, arg, inv.Flags)
			if err != nil {
				return err
			}
		}
		i += n - 1
	}

	for i, a := range cmd.Args {
		if i >= len(pos) {
			if !a.Optional {
				return usageErrorf("argument <%s> is missing", a.Name)
			}
			break
		}
		inv.Args[a.Name] = pos[i]
	}
	if len(pos) > len(cmd.Args) {
		return usageErrorf("unexpected argument: %s", pos[len(cmd.Args)])
	}
	return nil
}

// matchShortGroup expands combined boolean shorts such as -at.
func (e *Engine) matchShortGroup(flags []*Flag, arg string, dst map[string]any) (int, error) {
	if strings.HasPrefix(arg, "--") || len(arg) < 3 {
		return 0, usageErrorf("unknown flag: %s", arg)
	}
	set := make(map[string]bool)
	for _, c := range arg[1:] {
		var match *Flag
		for _, f := range flags {
			if f.Short == string(c) && f.Type == "bool" {
				match = f
				break
			}
		}
		if match == nil {
			return 0, usageErrorf("unknown flag: %s", arg)
		}
		set[match.Name] = true
	}
	for name := range set {
		dst[name] = true
	}
	return 1, nil
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if a != "--" && !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func commandWords(c *Command) []string {
	return strings.Split(getCmdPath(c), "/")
}

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Engine) PrintHelp(args ...string) {
	t := e.Theme
	if len(args) > 0 {
		subject := args[0]
		for _, topic := range e.Topics {
			if topic.Name == subject || strings.HasPrefix(topic.Name, subject) {
				e.PrintTopicHelp(topic)
				return
			}
		}
		curr := e.Commands
		var found *Command
		for _, arg := range args {
			var match *Command
			for _, c := range curr {
				if c.Name == arg || strings.HasPrefix(c.Name, arg) {
					match = c
					break
				}
			}
			if match == nil {
				break
			}
			found = match
			curr = match.Subs
		}
		if found != nil && found.Name != "help" {
			e.PrintCommandHelp(found)
			return
		}
	}
	e.printf("%s\n", t.Styled(t.Cyan.Bold(true), "shea - files, disks and processes at a glance"))
	e.printf("\n%s\n", t.Styled(t.Bold, "Usage:"))
	e.printf("  shea %s\n", t.Styled(t.Yellow, "[flags] <command>"))
	e.printf("\n%s\n", t.Styled(t.Bold, "Global Flags:"))
	e.printf("  %s %s\n", padRight(t.Styled(t.Cyan, "--help, -h"), 16), t.Styled(t.Dim, "Show help [command | topic]"))
	for _, f := range e.GlobalFlags {
		e.printf("  %s %s\n", padRight(t.Styled(t.Cyan, flagLabel(f)), 16), t.Styled(t.Dim, f.Desc))
	}

	categories := []struct {
		name string
		icon string
		cmds []string
	}{
		{"FILES", t.IconDir, []string{"list"}},
		{"DISK", t.IconDisk, []string{"disk"}},
		{"PROCESSES", t.IconCPU, []string{"top"}},
	}
	shown := make(map[string]bool)
	e.printf("\n")
	for _, cat := range categories {
		for _, name := range cat.cmds {
			for _, c := range e.Commands {
				if c.Name == name {
					e.printCommandTree(c, "", true, cat.icon)
					shown[c.Name] = true
				}
			}
		}
	}
	var misc []*Command
	for _, c := range e.Commands {
		if !shown[c.Name] && c.Name != "help" {
			misc = append(misc, c)
		}
	}
	if len(misc) > 0 {
		e.printf("\n%s %s\n", t.Bullet, t.Styled(t.Bold, "MISC"))
		for i, c := range misc {
			e.printCommandTree(c, "", i == len(misc)-1, "")
		}
	}
	if len(e.Topics) > 0 {
		e.printf("\n%s %s\n", t.IconHelp, t.Styled(t.Bold, "Topics:"))
		for _, topic := range e.Topics {
			e.printf("  %s %s %s\n", t.Styled(t.Cyan, topic.Name), e.dots(lipgloss.Width(topic.Name), 20), t.Styled(t.Dim, topic.Desc))
		}
	}
	e.printf("\nType '%s' for more details.\n", t.Styled(t.Yellow, "shea help <command>"))
}

func flagLabel(f *Flag) string {
	label := "--" + f.Name
	if f.Short != "" {
		label += ", -" + f.Short
	}
	if f.Type != "bool" {
		label += " <" + f.Type + ">"
	}
	return label
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func (e *Engine) dots(used, target int) string {
	t := e.Theme
	n := target - used
	if n < 2 {
		n = 2
	}
	return t.Styled(t.Dim, strings.Repeat(".", n))
}

func (e *Engine) printCommandTree(c *Command, indent string, isLast bool, icon string) {
	t := e.Theme
	prefix := t.BoxTree
	if isLast {
		prefix = t.BoxLast
	}
	namePart := indent + prefix + " "
	if icon != "" {
		namePart += icon + " "
	}
	plain := lipgloss.Width(namePart + c.Name)
	namePart += t.Styled(t.Cyan, c.Name)
	e.printf("%s %s %s\n", namePart, e.dots(plain, 30), t.Styled(t.Dim, c.Desc))

	newIndent := indent
	if isLast {
		newIndent += "    "
	} else {
		newIndent += t.BoxItem + " "
	}
	for i, s := range c.Subs {
		e.printCommandTree(s, newIndent, i == len(c.Subs)-1, "")
	}
}

func (e *Engine) PrintCommandHelp(c *Command) {
	t := e.Theme
	e.printf("\n%s %s\n", t.Styled(t.Bold, "Command:"), t.Styled(t.Cyan, strings.Join(commandWords(c), " ")))
	e.printf("%s %s\n", t.Styled(t.Bold, "Description:"), t.Styled(t.Dim, c.Desc))
	e.printf("\n")
	if len(c.Subs) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Subcommands:"))
		for i, s := range c.Subs {
			prefix := t.BoxTree
			if i == len(c.Subs)-1 {
				prefix = t.BoxLast
			}
			e.printf("  %s %s %s\n", prefix, padRight(t.Styled(t.Cyan, s.Name), 12), t.Styled(t.Dim, s.Desc))
		}
		e.printf("\n")
	}
	if len(c.Args) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Arguments:"))
		for _, a := range c.Args {
			label := "<" + a.Name + ">"
			if a.Optional {
				label = "[" + a.Name + "]"
			}
			e.printf("  %s %s\n", padRight(t.Styled(t.Yellow, label), 15), t.Styled(t.Dim, a.Desc))
		}
		e.printf("\n")
	}
	if len(c.Flags) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Flags:"))
		for _, f := range c.Flags {
			e.printf("  %s %s\n", padRight(t.Styled(t.Cyan, flagLabel(f)), 24), t.Styled(t.Dim, f.Desc))
		}
		e.printf("\n")
	}
	if len(c.Examples) > 0 {
		e.printf("%s\n", t.Styled(t.Bold, "Examples:"))
		for _, ex := range c.Examples {
			e.printf("  %s %s\n", t.Styled(t.Green, "$"), ex)
		}
		e.printf("\n")
	}
}

func (e *Engine) PrintTopicHelp(topic *Topic) {
	t := e.Theme
	e.printf("\n%s %s\n", t.Styled(t.Bold, "Topic:"), t.Styled(t.Cyan, topic.Name))
	e.printf("%s %s\n", t.Styled(t.Bold, "Description:"), t.Styled(t.Dim, topic.Desc))
	e.printf("\n%s\n\n", topic.Text)
}

func getCmdPath(c *Command) string {
	if c.Parent == nil {
		return c.Name
	}
	return getCmdPath(c.Parent) + "/" + c.Name
}
