package hidefolder

import (
	"embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Hide folders from a file tree by regular expression"
	MsgWatchShort       = "Keep a directory's folders in sync with the rules"
	MsgListShort        = "Classify a directory once and list its folders"
	MsgCheckShort       = "Show which rule hides each path"
	MsgSimulateShort    = "Run the engine on an XML document snapshot"
	MsgSettingsShort    = "Show and edit the folder rules"
	MsgSettingsShow     = "Print the rules and whether hiding is on"
	MsgSettingsSet      = "Replace the rules with the given patterns"
	MsgSettingsAdd      = "Append a pattern to the rules"
	MsgSettingsRemove   = "Remove a pattern from the rules"
	MsgSettingsPath     = "Print where the settings are stored"
	MsgEnableShort      = "Switch folder hiding on"
	MsgDisableShort     = "Switch folder hiding off"
	MsgToggleShort      = "Flip folder hiding on or off"
	MsgSyntaxShort      = "Explain the folder rule syntax"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"
	MsgManShort         = "Generate the man page"
	MsgNoCommand        = "no command specified"
	MsgWatching         = "Watching %s"
	MsgStopped          = "Stopped watching %s"
	MsgFoldersTitle     = "Folders in %s"
	MsgNoFolders        = "No folders found."
	MsgCheckTitle       = "Rule check"
	MsgSettingsTitle    = "Folder rules (%s)"
	MsgNoRules          = "No rules."
	MsgEnabled          = "Folder hiding is on"
	MsgDisabled         = "Folder hiding is off"
	MsgSimulateSummary  = "%d passes, %d delivery rounds, %d folders hidden"
	MsgNoteRule         = "(line %d: %s)"
	MsgNoteRuleOff      = "(line %d: %s; hiding is off)"
	MsgNoteParent       = "(under a hidden folder)"
	MsgNoteVisible      = "(visible)"
	MsgNoteInvalid      = "(invalid: %v)"
	MsgPatternRemoved   = "Removed %q"
	MsgPatternAdded     = "Added %q"
	MsgPatternsReplaced = "Rules replaced (%d lines)"

	// Error messages
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrOpenSettings = "failed to open settings: %w"
	MsgErrNoPattern    = "pattern %q is not in the rules"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default $XDG_CONFIG_HOME/hidefolder/config.toml)"
	MsgFlagSettings = "Settings location (default depends on --backend)"
	MsgFlagBackend  = "Settings backend: file or sqlite"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagAll      = "Also list hidden folders"
	MsgFlagEnable   = "Treat hiding as switched on"
	MsgFlagRounds   = "Give up when changes are still pending after this many rounds"
	MsgFlagOutput   = "Write the document to this file instead of stdout"
)

//go:embed msgs/*.txt
var msgFS embed.FS

//go:embed topics
var topicsFS embed.FS

func msg(name string) string {
	data, err := msgFS.ReadFile("msgs/" + name + ".txt")
	if err != nil {
		panic(err)
	}
	return strings.TrimRight(string(data), "\n")
}

// Long messages from embedded files
var (
	MsgRootLong        = msg("root-long")
	MsgWatchLong       = msg("watch-long")
	MsgWatchExample    = msg("watch-example")
	MsgListLong        = msg("list-long")
	MsgListExample     = msg("list-example")
	MsgCheckLong       = msg("check-long")
	MsgSimulateLong    = msg("simulate-long")
	MsgSimulateExample = msg("simulate-example")
	MsgSettingsLong    = msg("settings-long")
	MsgUsageTemplate   = msg("usage-template") + "\n"
)
