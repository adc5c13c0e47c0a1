// Package console is the interactive terminal front end of the dashboard.
// It renders the same views as the HTTP API as text tables.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/pkg/logger"
)

// Service is the dashboard behaviour the console drives. *app.Service
// satisfies it.
type Service interface {
	Leaderboard(ctx context.Context, s *leaderboardapi.Session) ([]awards.Standing, error)
	ContestantLog(ctx context.Context, s *leaderboardapi.Session, name string) (app.ContestantView, error)
	Results(ctx context.Context, s *leaderboardapi.Session, from, to string) (app.ResultsView, error)

	CreateContestant(ctx context.Context, s *leaderboardapi.Session, in app.ContestantInput) (app.MutationResult[[]model.Contestant], error)
	DeleteContestant(ctx context.Context, s *leaderboardapi.Session, id model.ID) (app.MutationResult[[]model.Contestant], error)
	AddPoints(ctx context.Context, s *leaderboardapi.Session, ref app.ContestantRef, in app.PointsInput) (app.MutationResult[app.ContestantView], error)
	GrantAccolade(ctx context.Context, s *leaderboardapi.Session, ref app.ContestantRef, in app.AccoladeInput) (app.MutationResult[app.ContestantView], error)

	Login(ctx context.Context, s *leaderboardapi.Session, in app.LoginInput) error
	Logout(ctx context.Context, s *leaderboardapi.Session) error
	AuthEnabled() bool
}

// Console reads commands from in and renders pages to out.
type Console struct {
	svc    Service
	sess   *leaderboardapi.Session
	nav    *Navigator
	r      *Renderer
	in     *bufio.Scanner
	logger logger.Logger

	pageSize    int
	maxPageSize int
	debounce    time.Duration
	exportOpts  export.Options
	exportDir   string
	now         func() time.Time

	shown    Page
	loadErr  error
	screen   screen
	board    *tableScreen[awards.Standing]
	log      *tableScreen[model.LogEntry]
	detail   *app.ContestantView
	failures []app.DetailFailure
	quit     bool
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageSizes sets the default and maximum table page sizes.
func WithPageSizes(def, maxSize int) Option {
	return func(c *Console) {
		if def > 0 {
			c.pageSize = def
		}
		if maxSize >= c.pageSize {
			c.maxPageSize = maxSize
		}
	}
}

// WithFilterDebounce sets the pause before a typed filter is applied.
func WithFilterDebounce(d time.Duration) Option {
	return func(c *Console) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithExport sets the workbook layout and the directory exports land in.
func WithExport(dir string, opts export.Options) Option {
	return func(c *Console) {
		c.exportDir = dir
		c.exportOpts = opts
	}
}

// WithClock sets the time source used for export names and token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a console for the signed in state held by sess.
func New(svc Service, sess *leaderboardapi.Session, in io.Reader, out io.Writer, opts ...Option) *Console {
	if sess == nil {
		sess = leaderboardapi.SessionFromToken("")
	}
	c := &Console{
		svc:         svc,
		sess:        sess,
		r:           NewRenderer(out),
		in:          bufio.NewScanner(in),
		pageSize:    table.DefaultPageSize,
		maxPageSize: table.MaxPageSize,
		debounce:    table.DefaultFilterDebounce,
		exportDir:   ".",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	c.logger = c.logger.Named("console")
	c.nav = NewNavigator(sess)
	return c
}

// Navigator exposes the page state.
func (c *Console) Navigator() *Navigator { return c.nav }

// Run serves pages until the user quits, the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.closeScreen()
	if c.sess.Expired(c.now()) {
		c.logger.Warn(ctx, "stored session expired")
		c.r.Failure("Your session has expired. Sign in again.")
		if err := c.sess.End(); err != nil {
			c.logger.Error(ctx, "failed to clear session", logger.Error(err))
		}
		c.nav.Replace(DashboardPage{})
	}
	for ctx.Err() == nil {
		var ok bool
		switch p := c.nav.Current().(type) {
		case LoginPage:
			c.shown = nil
			ok = c.loginForm(ctx)
		case AddContestantPage:
			c.shown = nil
			ok = c.addForm(ctx)
		default:
			if c.shown != p {
				c.load(ctx, p)
				if c.nav.Current() != p {
					continue
				}
				c.draw()
			}
			ok = c.prompt(ctx)
		}
		if !ok {
			if c.quit {
				return nil
			}
			return c.in.Err()
		}
	}
	return nil
}

func (c *Console) readLine(label string) (string, bool) {
	c.r.Prompt(label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) prompt(ctx context.Context) bool {
	line, ok := c.readLine("> ")
	if !ok {
		return false
	}
	if line == "" {
		return true
	}
	cmd, arg, _ := strings.Cut(line, " ")
	return c.dispatch(ctx, strings.ToLower(cmd), strings.TrimSpace(arg))
}

// dispatch runs one command. It returns false when the user quits.
func (c *Console) dispatch(ctx context.Context, cmd, arg string) bool {
	switch cmd {
	case "q", "quit", "exit":
		c.quit = true
		return false
	case "h", "help", "?":
		c.help()
		return true
	case "b", "back":
		c.nav.Back()
		return true
	case "r", "refresh":
		c.shown = nil
		return true
	case "login":
		if c.sess.Authenticated() {
			c.r.Notice("Already signed in.")
			return true
		}
		c.nav.Go(LoginPage{Next: DashboardPage{}})
		return true
	case "logout":
		c.logout(ctx)
		return true
	case "board", "public":
		c.nav.Go(PublicLeaderboardPage{})
		return true
	case "home", "dashboard":
		c.nav.Go(DashboardPage{})
		return true
	case "results":
		from, to, _ := strings.Cut(arg, " ")
		c.nav.Go(ResultsPage{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
		return true
	case "x", "export":
		c.export(ctx, arg)
		return true
	}

	if c.screen != nil {
		handled, err := c.screen.command(cmd, arg)
		if handled {
			if err != nil {
				c.r.Failure(c.describe(err))
			} else {
				c.draw()
			}
			return true
		}
	}

	var (
		handled bool
		err     error
	)
	switch p := c.nav.Current().(type) {
	case DashboardPage:
		handled, err = c.dashboardCommand(ctx, cmd, arg)
	case PublicLeaderboardPage:
		handled, err = c.boardCommand(cmd, arg)
	case ContestantDetailsPage:
		handled, err = c.detailsCommand(ctx, p, cmd, arg)
	case ResultsPage:
		handled, err = c.resultsCommand(cmd, arg)
	}
	if !handled {
		c.r.Failure(fmt.Sprintf("Unknown command %q. Type help for the list.", cmd))
		return true
	}
	if err != nil {
		c.r.Failure(c.describe(err))
	}
	return true
}

func (c *Console) boardCommand(cmd, arg string) (bool, error) {
	if cmd != "o" && cmd != "open" {
		return false, nil
	}
	s, err := c.standing(arg)
	if err != nil {
		return true, err
	}
	c.nav.Go(ContestantDetailsPage{Name: s.Name, ID: s.ID})
	return true, nil
}

func (c *Console) dashboardCommand(ctx context.Context, cmd, arg string) (bool, error) {
	switch cmd {
	case "a", "add":
		c.nav.Go(AddContestantPage{})
		return true, nil
	case "d", "delete":
		s, err := c.standing(arg)
		if err != nil {
			return true, err
		}
		answer, ok := c.readLine(fmt.Sprintf("Delete %q? [y/N]: ", s.Name))
		if !ok || !strings.EqualFold(answer, "y") {
			return true, nil
		}
		res, err := c.svc.DeleteContestant(ctx, c.sess, s.ID)
		if err != nil {
			return true, err
		}
		c.report(res.Notice, res.Err)
		c.refreshBoard(res.Refreshed, res.RefreshErr)
		return true, nil
	}
	return c.boardCommand(cmd, arg)
}

func (c *Console) detailsCommand(ctx context.Context, p ContestantDetailsPage, cmd, arg string) (bool, error) {
	if c.detail == nil {
		return false, nil
	}
	ref := app.ContestantRef{ID: p.ID, Name: p.Name}
	if ref.ID.IsZero() {
		ref.ID = c.detail.Contestant.ID
	}
	switch cmd {
	case "c", "catalog":
		c.catalog()
		return true, nil
	case "points":
		amount, reason, _ := strings.Cut(arg, " ")
		n, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return true, usage("points <amount> <reason>")
		}
		res, err := c.svc.AddPoints(ctx, c.sess, ref, app.PointsInput{Points: n, Reason: reason})
		if err != nil {
			return true, err
		}
		c.report(res.Notice, res.Err)
		c.refreshDetail(res.Refreshed, res.RefreshErr)
		return true, nil
	case "award":
		pick, reason, _ := strings.Cut(arg, " ")
		t, err := c.accolade(pick)
		if err != nil {
			return true, err
		}
		res, err := c.svc.GrantAccolade(ctx, c.sess, ref, app.AccoladeInput{AccoladeID: t.ID, Reason: reason})
		if err != nil {
			return true, err
		}
		c.report(res.Notice, res.Err)
		c.refreshDetail(res.Refreshed, res.RefreshErr)
		return true, nil
	}
	return false, nil
}

func (c *Console) resultsCommand(cmd, arg string) (bool, error) {
	if cmd != "range" {
		return false, nil
	}
	from, to, _ := strings.Cut(arg, " ")
	c.nav.Replace(ResultsPage{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
	return true, nil
}

// standing finds a row of the loaded standings by rank or name.
func (c *Console) standing(ref string) (awards.Standing, error) {
	if ref == "" || c.board == nil {
		return awards.Standing{}, usage("open <rank|name>")
	}
	rank, rankErr := strconv.Atoi(ref)
	for _, s := range c.board.engine.PrePaginationRows() {
		if (rankErr == nil && s.Rank == rank) || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return awards.Standing{}, app.ErrNotFound
}

// accolade finds a catalog entry by its position in the catalog or its id.
func (c *Console) accolade(pick string) (model.AccoladeType, error) {
	if pick == "" {
		return model.AccoladeType{}, usage("award <number|id> [reason]")
	}
	if n, err := strconv.Atoi(pick); err == nil && n >= 1 && n <= len(c.detail.Catalog) {
		return c.detail.Catalog[n-1], nil
	}
	cat := model.NewCatalog(c.detail.Catalog)
	if t, ok := cat.Find(model.ID(pick)); ok {
		return t, nil
	}
	if t, ok := cat.Lookup(pick); ok {
		return t, nil
	}
	for _, t := range c.detail.Catalog {
		if strings.EqualFold(t.Name, pick) {
			return t, nil
		}
	}
	return model.AccoladeType{}, usage("award <number|id> [reason], see catalog")
}

func (c *Console) loginForm(ctx context.Context) bool {
	c.r.Heading(LoginPage{}.Title())
	user, ok := c.readLine("Username (empty to cancel): ")
	if !ok {
		return false
	}
	if user == "" {
		c.nav.Replace(PublicLeaderboardPage{})
		return true
	}
	pass, ok := c.readLine("Password: ")
	if !ok {
		return false
	}
	if err := c.svc.Login(ctx, c.sess, app.LoginInput{Username: user, Password: pass}); err != nil {
		c.r.Failure("Sign in failed. " + c.describe(err))
		return true
	}
	c.r.Notice("Signed in.")
	c.nav.SignedIn()
	return true
}

func (c *Console) addForm(ctx context.Context) bool {
	c.r.Heading(AddContestantPage{}.Title())
	name, ok := c.readLine("Name (empty to cancel): ")
	if !ok {
		return false
	}
	if name == "" {
		c.nav.Back()
		return true
	}
	batch, ok := c.readLine("Batch: ")
	if !ok {
		return false
	}
	res, err := c.svc.CreateContestant(ctx, c.sess, app.ContestantInput{Name: name, Batch: batch})
	if err != nil {
		c.r.Failure(c.describe(err))
		return true
	}
	c.report(res.Notice, res.Err)
	if _, ok := c.nav.Back().(DashboardPage); ok && res.RefreshErr == nil {
		c.show(DashboardPage{}, awards.Standings(res.Refreshed))
		c.draw()
	}
	return true
}

func (c *Console) logout(ctx context.Context) {
	if err := c.svc.Logout(ctx, c.sess); err != nil {
		c.logger.Error(ctx, "failed to clear session", logger.Error(err))
	}
	c.r.Notice("Signed out.")
	c.nav.SignedOut()
	c.shown = nil
}

func (c *Console) export(ctx context.Context, name string) {
	if c.screen == nil {
		c.r.Failure(c.describe(ErrNothingToExport))
		return
	}
	path, err := c.screen.exportTo(c.exportDir, name, c.exportOpts, c.now())
	if err != nil {
		c.logger.Error(ctx, "export failed", logger.Error(err))
		c.r.Failure(c.describe(err))
		return
	}
	c.logger.Debug(ctx, "export written", logger.String("file", path))
	c.r.Notice("Exported to " + path)
}

// load fetches the data behind p and builds its table.
func (c *Console) load(ctx context.Context, p Page) {
	c.closeScreen()
	c.shown, c.loadErr, c.detail, c.failures = p, nil, nil, nil
	switch p := p.(type) {
	case DashboardPage, PublicLeaderboardPage:
		rows, err := c.svc.Leaderboard(ctx, c.sess)
		if err != nil {
			c.loadErr = err
			break
		}
		c.show(p, rows)
	case ContestantDetailsPage:
		view, err := c.svc.ContestantLog(ctx, c.sess, p.Name)
		if err != nil {
			c.loadErr = err
			break
		}
		c.detail = &view
		c.log = newTableScreen(c, app.TableContestant, view.Log, app.ContestantLogColumns())
		c.screen = c.log
	case ResultsPage:
		view, err := c.svc.Results(ctx, c.sess, p.From, p.To)
		if err != nil {
			c.loadErr = err
			break
		}
		c.failures = view.Failures
		c.screen = newTableScreen(c, app.TableResults, view.Rows, app.ResultsColumns())
	}
	if c.loadErr != nil {
		c.logger.Warn(ctx, "failed to load page", logger.String("page", p.Title()), logger.Error(c.loadErr))
		if leaderboardapi.IsUnauthorized(c.loadErr) {
			c.r.Failure(c.describe(c.loadErr))
			_ = c.sess.End()
			c.nav.Replace(p)
		}
	}
}

// show installs rows as the standings table of p.
func (c *Console) show(p Page, rows []awards.Standing) {
	c.closeScreen()
	c.shown, c.loadErr = p, nil
	c.board = newTableScreen(c, app.TableLeaderboard, rows, app.LeaderboardColumns())
	c.screen = c.board
}

func (c *Console) refreshBoard(list []model.Contestant, err error) {
	if err != nil {
		c.r.Failure("Could not reload the list. " + c.describe(err))
		c.shown = nil
		return
	}
	c.board.engine.SetRows(awards.Standings(list))
	c.draw()
}

func (c *Console) refreshDetail(view app.ContestantView, err error) {
	if err != nil {
		c.r.Failure("Could not reload the contestant. " + c.describe(err))
		c.shown = nil
		return
	}
	c.detail = &view
	c.log.engine.SetRows(view.Log)
	c.draw()
}

func (c *Console) closeScreen() {
	if c.screen != nil {
		c.screen.close()
	}
	c.screen, c.board, c.log = nil, nil, nil
}

func (c *Console) draw() {
	p := c.nav.Current()
	c.r.Heading(p.Title())
	if c.loadErr != nil {
		c.r.Failure(c.describe(c.loadErr))
		c.r.Hint("r refresh", "b back", "q quit")
		return
	}
	switch p := p.(type) {
	case ContestantDetailsPage:
		if c.detail != nil {
			ct := c.detail.Contestant
			c.r.Printf("Batch: %s  Points: %s\n", ct.Batch, FormatCell(ct.TotalPoints))
			c.r.Shelf(c.detail.Shelf)
		}
	case ResultsPage:
		c.r.Printf("From: %s  To: %s\n", orAny(p.From), orAny(p.To))
		for _, f := range c.failures {
			c.r.Failure(fmt.Sprintf("Could not load %s: %s", f.Name, f.Error))
		}
	}
	if c.screen != nil {
		c.screen.render(c.r)
	}
	c.r.Hint(hints(p)...)
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func (c *Console) catalog() {
	if len(c.detail.Catalog) == 0 {
		c.r.Printf("No accolades available.\n")
		return
	}
	for i, t := range c.detail.Catalog {
		c.r.Printf("%d. %s (%s) %s\n", i+1, t.Name, t.ID, t.Description)
	}
}

func (c *Console) report(notice string, err error) {
	if err == nil {
		c.r.Notice(notice)
		return
	}
	c.r.Failure(notice + " " + c.describe(err))
}

// describe turns err into a message for the user.
func (c *Console) describe(err error) string {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, app.ErrNotFound):
		return "Contestant not found."
	case leaderboardapi.IsUnauthorized(err):
		return "Not authorized. Sign in again."
	case errors.Is(err, export.ErrExport):
		return "Export failed: " + err.Error()
	case errors.Is(err, app.ErrFetch):
		return "Could not reach the leaderboard service."
	}
	return err.Error()
}

func hints(p Page) []string {
	common := []string{"f <text>", "s <column>", "n/p", "size <n>", "x [file]", "r refresh"}
	switch p.(type) {
	case DashboardPage:
		return append([]string{"open <rank|name>", "add", "delete <rank|name>", "results"}, common...)
	case PublicLeaderboardPage:
		return append([]string{"open <rank|name>", "login"}, common...)
	case ContestantDetailsPage:
		return append([]string{"points <n> <reason>", "award <n> [reason]", "catalog", "b back"}, common...)
	case ResultsPage:
		return append([]string{"range <from> [to]", "b back"}, common...)
	}
	return common
}

func (c *Console) help() {
	c.r.Printf(`Commands:
  q, quit               leave the console
  b, back               previous page
  r, refresh            reload the page
  home, board           dashboard or public leaderboard
  results [from] [to]   grants between two dates
  login, logout         start or end the session
  f, filter <text>      filter rows on any column
  clear                 remove the filter
  s, sort <column>      cycle sorting on a column id
  n, p, page <n>        move between pages
  size <n>              rows per page, up to %d
  x, export [file]      save the filtered rows as xlsx
`, c.maxPageSize)
	c.r.Hint(hints(c.nav.Current())...)
}
