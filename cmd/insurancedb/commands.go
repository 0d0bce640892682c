package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"

	"github.com/kjk/insurancedb/backup"
	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/insurance"
	"github.com/kjk/insurancedb/log"
	"github.com/kjk/insurancedb/u"
)

type app struct {
	cfg   *Config
	out   io.Writer
	model *insurance.Model
}

// journalChange records every successful mutation in the events log
func journalChange(c flatdb.Change) {
	vals := []any{"id", c.ID}
	if len(c.Fields) > flatdb.FieldName {
		vals = append(vals, "name", c.Fields[flatdb.FieldName])
	}
	log.Event(string(c.Op), vals...)
}

// journalObserver records failed operations in the events log
var journalObserver = &insurance.ObserverFuncs{
	OnFailed: func(err error) {
		log.Event("failed", "kind", flatdb.KindOf(err).String(), "error", err.Error())
	},
}

func (a *app) openModel() (*insurance.Model, error) {
	if a.model != nil {
		return a.model, nil
	}
	store, err := flatdb.Open(a.cfg.storeConfig())
	if err != nil {
		return nil, err
	}
	m, err := insurance.New(store)
	if err != nil {
		return nil, err
	}
	m.Register(journalObserver)
	a.model = m
	return m, nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a record number", errUsage, s)
	}
	return id, nil
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: '%s' needs %d arguments, got %d", errUsage, cmd, n, len(args))
	}
	return nil
}

func companyFromArgs(args []string) (*insurance.Company, error) {
	if len(args) != flatdb.NumFields {
		return nil, fmt.Errorf("%w: expected %d fields (%s), got %d", errUsage, flatdb.NumFields, strings.Join(flatdb.FieldNames[:], ", "), len(args))
	}
	return insurance.FromFields(0, args)
}

func (a *app) cmdInit(args []string) error {
	if err := wantArgs("init", args, 0); err != nil {
		return err
	}
	store, err := flatdb.Create(a.cfg.storeConfig())
	if err != nil {
		return err
	}
	n, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "database '%s' has %d records\n", store.Path(), n)
	return nil
}

func (a *app) printCompanies(companies []*insurance.Company) {
	if len(companies) == 0 {
		fmt.Fprintf(a.out, "no companies\n")
		return
	}
	for _, c := range companies {
		p := strconv.FormatFloat(c.Percentage, 'f', -1, 64)
		fmt.Fprintf(a.out, "%4d  %-24s %-14s %-28s %s%%\n", c.ID, c.Name, c.Telephone, c.InsuranceTypes, p)
	}
}

func (a *app) printJSON(v any) error {
	d, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = a.out.Write(pretty.Pretty(d))
	return err
}

func (a *app) cmdList(args []string) error {
	fs := newFlagSet("list", a.out)
	flgSort := fs.String("sort", "id", "sort by id, name or percentage")
	flgJSON := fs.Bool("json", false, "print as json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sortBy, err := insurance.SortStrategyByName(*flgSort)
	if err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}
	m, err := a.openModel()
	if err != nil {
		return err
	}
	m.SetSortStrategy(sortBy)
	companies := m.All()
	if *flgJSON {
		if companies == nil {
			companies = []*insurance.Company{}
		}
		return a.printJSON(companies)
	}
	a.printCompanies(companies)
	return nil
}

func (a *app) cmdShow(args []string) error {
	if err := wantArgs("show", args, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	m, err := a.openModel()
	if err != nil {
		return err
	}
	if !m.Select(id) {
		return &flatdb.Error{Kind: flatdb.KindRecordNotFound, Op: "show", ID: id}
	}
	fmt.Fprintf(a.out, "Record %d\n%s", id, m.Current())
	return nil
}

func (a *app) cmdAdd(args []string) error {
	c, err := companyFromArgs(args)
	if err != nil {
		return err
	}
	m, err := a.openModel()
	if err != nil {
		return err
	}
	added, err := m.Add(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added '%s' as record %d\n", added.Name, added.ID)
	return nil
}

func (a *app) cmdUpdate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: 'update' needs a record number", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := companyFromArgs(args[1:])
	if err != nil {
		return err
	}
	m, err := a.openModel()
	if err != nil {
		return err
	}
	if _, err = m.Update(id, c); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated record %d\n", id)
	return nil
}

func (a *app) cmdDelete(args []string) error {
	if err := wantArgs("delete", args, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	m, err := a.openModel()
	if err != nil {
		return err
	}
	if err = m.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted record %d\n", id)
	return nil
}

func (a *app) cmdFind(args []string) error {
	fs := newFlagSet("find", a.out)
	flgJSON := fs.Bool("json", false, "print as json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	m, err := a.openModel()
	if err != nil {
		return err
	}
	companies, err := m.Search(query)
	if err != nil {
		return err
	}
	if *flgJSON {
		if companies == nil {
			companies = []*insurance.Company{}
		}
		return a.printJSON(companies)
	}
	a.printCompanies(companies)
	return nil
}

func (a *app) cmdHistory(args []string) error {
	fs := newFlagSet("history", a.out)
	flgDay := fs.String("day", "", "day in YYYY-MM-DD format, today if empty")
	flgDays := fs.Bool("days", false, "list days with journalled changes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.cfg.LogDir == "" {
		return fmt.Errorf("%w: history needs log_dir in config or -log-dir", errUsage)
	}
	if *flgDays {
		days, err := log.EventDays(a.cfg.LogDir)
		if err != nil {
			return err
		}
		for _, day := range days {
			fmt.Fprintf(a.out, "%s\n", day.Format(time.DateOnly))
		}
		return nil
	}
	day := time.Now().UTC()
	if *flgDay != "" {
		var err error
		day, err = time.Parse(time.DateOnly, *flgDay)
		if err != nil {
			return fmt.Errorf("%w: invalid day '%s'", errUsage, *flgDay)
		}
	}
	events, err := log.ReadEvents(a.cfg.LogDir, day)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(a.out, "no changes on %s\n", day.Format(time.DateOnly))
		return nil
	}
	for _, e := range events {
		data := strings.ReplaceAll(strings.TrimSpace(e.Data), "\n", ", ")
		fmt.Fprintf(a.out, "%s  %-7s %s\n", e.Timestamp.Format(time.TimeOnly), e.Name, data)
	}
	return nil
}

func (a *app) cmdBackup(args []string) error {
	fs := newFlagSet("backup", a.out)
	flgUpload := fs.Bool("upload", false, "upload the snapshot to remote storage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := backup.Snapshot(a.cfg.dbPath(), a.cfg.BackupDir, a.cfg.BackupCodec)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created '%s' (%s)\n", path, u.FormatSize(u.FileSize(path)))
	log.Event("backup", "path", path)
	if !*flgUpload {
		return nil
	}
	if !a.cfg.Remote.IsEnabled() {
		return fmt.Errorf("%w: -upload needs remote in config", errUsage)
	}
	ctx := context.Background()
	remote, err := backup.NewRemote(ctx, &a.cfg.Remote)
	if err != nil {
		return err
	}
	remotePath, err := remote.Upload(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "uploaded as '%s'\n", remotePath)
	return nil
}

func (a *app) cmdBackups(args []string) error {
	fs := newFlagSet("backups", a.out)
	flgRemote := fs.Bool("remote", false, "list snapshots in remote storage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var names []string
	if *flgRemote {
		if !a.cfg.Remote.IsEnabled() {
			return fmt.Errorf("%w: -remote needs remote in config", errUsage)
		}
		ctx := context.Background()
		remote, err := backup.NewRemote(ctx, &a.cfg.Remote)
		if err != nil {
			return err
		}
		if names, err = remote.List(ctx); err != nil {
			return err
		}
	} else {
		paths, err := backup.List(a.cfg.BackupDir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			names = append(names, fmt.Sprintf("%s (%s)", path, u.FormatSize(u.FileSize(path))))
		}
	}
	if len(names) == 0 {
		fmt.Fprintf(a.out, "no snapshots\n")
		return nil
	}
	for _, name := range names {
		fmt.Fprintf(a.out, "%s\n", name)
	}
	return nil
}

// cmdRestore restores from a local snapshot. If it doesn't exist and
// remote storage is configured, the snapshot is downloaded first.
func (a *app) cmdRestore(args []string) error {
	if err := wantArgs("restore", args, 1); err != nil {
		return err
	}
	path := args[0]
	if !u.FileExists(path) && a.cfg.Remote.IsEnabled() {
		ctx := context.Background()
		remote, err := backup.NewRemote(ctx, &a.cfg.Remote)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		path = filepath.Join(a.cfg.BackupDir, name)
		if err = remote.Download(ctx, name, path); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "downloaded '%s'\n", path)
	}
	n, err := backup.Restore(path, a.cfg.dbPath())
	if err != nil {
		return err
	}
	log.Event("restore", "path", path, "lines", n)
	fmt.Fprintf(a.out, "restored %d lines from '%s'\n", n, path)
	return nil
}
