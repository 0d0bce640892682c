package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/log"
)

const usage = `usage: insurancedb [-config file] [-data-dir dir] [-log-dir dir] [-v] <command> [args]

commands:
  init                          create an empty database
  list [-sort id|name|percentage] [-json]
  show <id>
  add <name> <telephone> <url> <types> <percentage> <description>
  update <id> <name> <telephone> <url> <types> <percentage> <description>
  delete <id>
  find <query>                  e.g. "fire and theft", "fire theft" (any)
  history [-day YYYY-MM-DD] [-days]
                                show changes journalled on a given day
  backup [-upload]              make a compressed snapshot of the database
  backups [-remote]             list snapshots, oldest first
  restore <snapshot>            replace the database with a snapshot
`

var errUsage = errors.New("invalid usage")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
	os.Exit(1)
}

// errorMessage returns a short message for errors caused by the user
// and the full error otherwise
func errorMessage(err error) string {
	var dbErr *flatdb.Error
	if !errors.As(err, &dbErr) {
		return err.Error()
	}
	switch dbErr.Kind {
	case flatdb.KindRecordNotFound:
		return fmt.Sprintf("record %d doesn't exist", dbErr.ID)
	case flatdb.KindDuplicateRecord:
		return fmt.Sprintf("the same company is already stored as record %d", dbErr.ID)
	case flatdb.KindDatabaseNotFound:
		return fmt.Sprintf("database '%s' doesn't exist, create it with 'insurancedb init'", dbErr.Path)
	case flatdb.KindInvalid:
		if dbErr.Err != nil {
			return dbErr.Err.Error()
		}
	}
	return err.Error()
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("insurancedb", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Usage = func() { fmt.Fprint(out, usage) }
	var (
		flgConfig  string
		flgDataDir string
		flgLogDir  string
		flgVerbose bool
	)
	flags.StringVar(&flgConfig, "config", "", "path of yaml config file")
	flags.StringVar(&flgDataDir, "data-dir", "", "directory with the database")
	flags.StringVar(&flgLogDir, "log-dir", "", "directory for logs and change journal")
	flags.BoolVar(&flgVerbose, "v", false, "verbose logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flgConfig)
	if err != nil {
		return err
	}
	if flgDataDir != "" {
		cfg.DataDir = flgDataDir
	}
	if flgLogDir != "" {
		cfg.LogDir = flgLogDir
	}
	if flgVerbose {
		cfg.Verbose = true
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	log.Verbose = cfg.Verbose
	log.Output = out
	if cfg.LogDir != "" {
		log.Init(&log.Config{Dir: cfg.LogDir})
		defer log.Close()
	}

	a := &app{cfg: cfg, out: out}
	cmd, cmdArgs := strings.ToLower(rest[0]), rest[1:]
	log.Verbosef("insurancedb: %s %s\n", cmd, strings.Join(cmdArgs, " "))
	switch cmd {
	case "init":
		return a.cmdInit(cmdArgs)
	case "list", "ls":
		return a.cmdList(cmdArgs)
	case "show":
		return a.cmdShow(cmdArgs)
	case "add":
		return a.cmdAdd(cmdArgs)
	case "update":
		return a.cmdUpdate(cmdArgs)
	case "delete", "rm":
		return a.cmdDelete(cmdArgs)
	case "find", "search":
		return a.cmdFind(cmdArgs)
	case "history":
		return a.cmdHistory(cmdArgs)
	case "backup":
		return a.cmdBackup(cmdArgs)
	case "backups":
		return a.cmdBackups(cmdArgs)
	case "restore":
		return a.cmdRestore(cmdArgs)
	case "help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command '%s'", errUsage, cmd)
}
