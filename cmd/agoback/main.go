package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/iconidentify/agobackup/internal/backup"
	"github.com/iconidentify/agobackup/internal/config"
	"github.com/iconidentify/agobackup/internal/domain"
	"github.com/iconidentify/agobackup/internal/portal"
	"github.com/iconidentify/agobackup/internal/repository"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("agoback %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger; interactive output goes through fmt, so keep the log
	// stream on stderr and quiet unless something goes wrong.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	stdin := bufio.NewReader(os.Stdin)

	// Credentials: try credentials file first, then prompt
	username, password, err := resolveCredentials(cfg, stdin)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Login
	conn, err := portal.Connect(ctx, cfg.Portal.URL, username, password, cfg.Portal.Timeout)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logged in as %s to %s\n", conn.Username(), cfg.Portal.URL)

	// Folders
	folders, err := conn.Folders(ctx)
	if err != nil {
		fmt.Printf("Failed to list folders: %v\n", err)
		os.Exit(1)
	}
	if len(folders) == 0 {
		fmt.Println("No folders found.")
		os.Exit(1)
	}

	fmt.Println("\nFolders:")
	for i, folder := range folders {
		fmt.Printf("  %d. %s\n", i+1, folder.Title)
	}

	folderIdx, err := promptNumber(stdin, "\nEnter folder number: ", len(folders))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	folder := folders[folderIdx]

	// Items in folder
	all, err := conn.FolderItems(ctx, folder.ID)
	if err != nil {
		fmt.Printf("Failed to list items in folder: %v\n", err)
		os.Exit(1)
	}
	var items []portal.Item
	for _, item := range all {
		if portal.Backuppable(item) {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		fmt.Printf("No layers or maps found in '%s'.\n", folder.Title)
		os.Exit(1)
	}

	fmt.Printf("\nLayers and maps in '%s':\n", folder.Title)
	for i, item := range items {
		fmt.Printf("  %d. %s  (%s)\n", i+1, item.Title, item.Type)
	}

	selected, err := promptSelection(stdin, "\nEnter item number(s), e.g. 1 or 1,3,5: ", items)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Suggest the dated default subpath; blank accepts it.
	refs := make([]backup.ItemRef, len(selected))
	ids := make([]string, len(selected))
	for i, item := range selected {
		refs[i] = backup.ItemRef{Name: item.Title, Type: item.Type}
		ids[i] = item.ID
	}
	now := time.Now()
	defaultSubpath := backup.DefaultSubpath(strings.ReplaceAll(folder.Title, " ", ""), refs, now)

	fmt.Printf("\nBackup subpath (blank for %q): ", defaultSubpath)
	userPath, err := readLine(stdin)
	if err != nil {
		fmt.Printf("Failed to read input: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(userPath) == "" {
		userPath = defaultSubpath
	}

	// Export
	fmt.Println("\nExporting...")
	orchestrator := backup.NewOrchestrator(cfg.Backup.Root, logger)
	result, err := orchestrator.Execute(ctx, conn, strings.Join(ids, "\n"), userPath, now)

	recordAttempt(ctx, cfg, ids, userPath, result, err)

	if err != nil {
		fmt.Println(attemptMessage(err))
		os.Exit(1)
	}
	fmt.Printf("Backup completed. Output saved in: %s\n", result.OutputPath)
}

// resolveCredentials reads the configured credentials file, falling back to
// interactive prompts. The password prompt never echoes on a terminal.
func resolveCredentials(cfg *config.Config, stdin *bufio.Reader) (string, string, error) {
	if creds, err := config.LoadCredentialsFile(cfg.Backup.CredentialsFile); err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	} else if creds != nil {
		return creds.Username, creds.Password, nil
	}

	fmt.Print("Username: ")
	username, err := readLine(stdin)
	if err != nil {
		return "", "", err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", errors.New("Username is required.")
	}

	password, err := promptPassword(stdin)
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", errors.New("Password is required.")
	}
	return username, password, nil
}

// promptPassword prompts for a password without echoing
func promptPassword(stdin *bufio.Reader) (string, error) {
	fmt.Print("Password: ")

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", err
		}
		fmt.Println()
		return string(password), nil
	}

	// Fallback for non-terminal input
	password, err := readLine(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptNumber reads a 1-based choice and returns the 0-based index.
func promptNumber(stdin *bufio.Reader, prompt string, max int) (int, error) {
	fmt.Print(prompt)
	line, err := readLine(stdin)
	if err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, errors.New("Invalid number.")
	}
	if n < 1 || n > max {
		return 0, errors.New("Number out of range.")
	}
	return n - 1, nil
}

// promptSelection reads a comma-separated list of 1-based item numbers and
// returns the matching items in list order, duplicates collapsed.
func promptSelection(stdin *bufio.Reader, prompt string, items []portal.Item) ([]portal.Item, error) {
	fmt.Print(prompt)
	line, err := readLine(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	seen := make(map[int]bool)
	var indices []int
	for _, part := range strings.Split(strings.ReplaceAll(line, " ", ""), ",") {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("Invalid number: %s", part)
		}
		if n < 1 || n > len(items) {
			return nil, fmt.Errorf("Number %d out of range (1-%d).", n, len(items))
		}
		if !seen[n-1] {
			seen[n-1] = true
			indices = append(indices, n-1)
		}
	}
	if len(indices) == 0 {
		return nil, errors.New("No items selected.")
	}
	sort.Ints(indices)

	selected := make([]portal.Item, len(indices))
	for i, idx := range indices {
		selected[i] = items[idx]
	}
	return selected, nil
}

// recordAttempt persists the outcome when a history database is configured.
func recordAttempt(ctx context.Context, cfg *config.Config, ids []string, dest string, result *backup.Result, execErr error) {
	if cfg.History.Path == "" {
		return
	}
	history, err := repository.NewHistoryRepository(cfg.History.Path)
	if err != nil {
		slog.Warn("failed to open history database", "error", err)
		return
	}
	defer history.Close()

	attempt := domain.Attempt{
		ID:           uuid.NewString(),
		Source:       "cli",
		RequestedIDs: ids,
		Destination:  dest,
		Outcome:      domain.ClassifyOutcome(execErr),
		CreatedAt:    time.Now().UTC(),
	}
	if execErr != nil {
		attempt.Detail = execErr.Error()
	}
	if result != nil {
		attempt.Destination = result.Destination
		attempt.OutputPath = result.OutputPath
		attempt.CreatedAt = result.StartedAt.UTC()
	}
	if err := history.Record(ctx, attempt); err != nil {
		slog.Warn("failed to record backup attempt", "error", err)
	}
}

// attemptMessage maps an execution error to the status line shown to the user.
func attemptMessage(err error) string {
	var unresolved *domain.UnresolvedError
	var destErr *domain.DestinationError
	var exportErr *domain.ExportError

	switch {
	case errors.Is(err, domain.ErrNoIdentifiers):
		return "Enter at least one item ID to back up."
	case errors.Is(err, domain.ErrUnsafeDestination):
		return "Invalid backup path: must be under the allowed base directory."
	case errors.As(err, &unresolved):
		return "Invalid or inaccessible item IDs: " + strings.Join(unresolved.IDs, ", ")
	case errors.Is(err, domain.ErrNoValidItems):
		return "No valid items to back up."
	case errors.As(err, &destErr):
		return fmt.Sprintf("Cannot create backup directory: %v", destErr.Err)
	case errors.As(err, &exportErr):
		return fmt.Sprintf("Export failed: %v", exportErr.Err)
	default:
		return fmt.Sprintf("Export failed: %v", err)
	}
}
