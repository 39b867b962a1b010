package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"config":     {FileGlob: "*.yaml,*.yml"},
	"state":      {FileGlob: "*.db"},
	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "build", Desc: "Build every target of a project", Flags: extractFlagsFromFlagSet(newBuildFlagSet(&buildFlags{}))},
		{Name: "init", Desc: "Create a starter project", Flags: []flagDef{{Long: "force", Short: "f", Type: flagBool, Desc: "overwrite an existing project file"}}},
		{Name: "doctor", Desc: "Check the project and the PDF toolchain", Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "JSON output"}}},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

func commandNames() []string {
	cmds := getCommands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func flagWords(c commandDef) []string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

func generateBash(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# bash completion for songbook\n")
	b.WriteString("_songbook() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("    case \"$prev\" in\n")
	for _, c := range getCommands() {
		for _, f := range c.Flags {
			switch f.Type {
			case flagFile:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", f.Long)
			case flagDir:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", f.Long)
			}
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range getCommands() {
		switch c.Name {
		case "help":
			fmt.Fprintf(&b, "        help) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", strings.Join(commandNames(), " "))
		case "completion":
			b.WriteString("        completion) COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"$cur\")) ;;\n")
		default:
			if words := flagWords(c); len(words) > 0 {
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", c.Name, strings.Join(words, " "))
			}
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o default -F _songbook songbook\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer) error {
	var b strings.Builder
	b.WriteString("#compdef songbook\n\n")
	b.WriteString("_songbook() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range getCommands() {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("    case \"$words[2]\" in\n")
	for _, c := range getCommands() {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		b.WriteString("            _arguments")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, " \\\n                '--%s[%s]%s'", f.Long, zshEscape(f.Desc), zshAction(f))
		}
		b.WriteString("\n            ;;\n")
	}
	b.WriteString("        completion)\n")
	b.WriteString("            _values 'shell' bash zsh fish powershell\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _songbook songbook\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagDir:
		return ":dir:_files -/"
	case flagFile:
		globs := strings.Split(f.FileGlob, ",")
		return ":file:_files -g \"" + strings.Join(globs, " ") + "\""
	case flagEnum:
		return ":value:(" + strings.Join(f.Values, " ") + ")"
	default:
		return ":value:"
	}
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# fish completion for songbook\n")
	b.WriteString("complete -c songbook -f\n")
	for _, c := range getCommands() {
		fmt.Fprintf(&b, "complete -c songbook -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range getCommands() {
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c songbook -n '__fish_seen_subcommand_from %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagBool:
			case flagFile, flagDir:
				b.WriteString(" -r -F")
			default:
				b.WriteString(" -r")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
	}
	b.WriteString("complete -c songbook -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func generatePowerShell(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# PowerShell completion for songbook\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName songbook -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n")
	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    $words = @()\n")
	b.WriteString("    if ($elements.Count -le 2) {\n")
	fmt.Fprintf(&b, "        $words = @(%s)\n", psList(commandNames()))
	b.WriteString("    } else {\n")
	b.WriteString("        switch ($elements[1].Value) {\n")
	for _, c := range getCommands() {
		if words := flagWords(c); len(words) > 0 {
			fmt.Fprintf(&b, "            '%s' { $words = @(%s) }\n", c.Name, psList(words))
		}
	}
	b.WriteString("            'completion' { $words = @('bash', 'zsh', 'fish', 'powershell') }\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("    $words | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func psList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + w + "'"
	}
	return strings.Join(quoted, ", ")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: songbook completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:        eval \"$(songbook completion bash)\"")
	fmt.Fprintln(w, "  Zsh:         eval \"$(songbook completion zsh)\"")
	fmt.Fprintln(w, "  Fish:        songbook completion fish > ~/.config/fish/completions/songbook.fish")
	fmt.Fprintln(w, "  PowerShell:  songbook completion powershell | Out-String | Invoke-Expression")
}
