package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"rrstudy/internal/config"
	"rrstudy/internal/export"
	"rrstudy/internal/security"
	"rrstudy/internal/service"
	"rrstudy/internal/storage"
)

func main() {
	// Define subcommands
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	hashCmd := flag.NewFlagSet("hash-password", flag.ExitOnError)

	// Export flags
	exportKind := exportCmd.String("kind", "aggregate", "Export kind: aggregate or detailed")
	exportSession := exportCmd.String("session", "", "Session ID to export")
	exportAll := exportCmd.Bool("all", false, "Export every stored session")
	exportOutput := exportCmd.String("output", "", "Output directory (default: EXPORT_DIR)")

	// Delete flags
	deleteSession := deleteCmd.String("session", "", "Session ID to delete (required)")

	// Hash flags
	hashPassword := hashCmd.String("password", "", "Password to hash (default: read from stdin)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Needs no storage
	if os.Args[1] == "hash-password" {
		hashCmd.Parse(os.Args[2:])
		handleHashPassword(*hashPassword)
		return
	}

	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer closeStore()

	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		handleList(ctx, store)

	case "export":
		exportCmd.Parse(os.Args[2:])
		if *exportSession == "" && !*exportAll {
			fmt.Println("Error: -session or -all is required")
			exportCmd.PrintDefaults()
			os.Exit(1)
		}
		kind, err := export.ParseKind(*exportKind)
		if err != nil {
			log.Fatalf("Invalid -kind: %v", err)
		}
		if *exportOutput != "" {
			cfg.ExportDir = *exportOutput
		}
		exports := newExportService(ctx, cfg, store)
		handleExport(ctx, store, exports, kind, *exportSession)

	case "delete":
		deleteCmd.Parse(os.Args[2:])
		if *deleteSession == "" {
			fmt.Println("Error: -session flag is required")
			deleteCmd.PrintDefaults()
			os.Exit(1)
		}
		handleDelete(ctx, store, *deleteSession)

	default:
		printUsage()
		os.Exit(1)
	}
}

func newExportService(ctx context.Context, cfg *config.Config, store storage.Store) *service.ExportService {
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Printf("Warning: email delivery disabled: %v", err)
		emailService = nil
	}

	exports, err := service.NewExportService(ctx, store, emailService, service.ExportConfig{
		Dir:       cfg.ExportDir,
		S3Bucket:  cfg.ExportS3Bucket,
		S3Prefix:  cfg.ExportS3Prefix,
		AWSRegion: cfg.AWSRegion,
		MailTo:    cfg.ResearcherMail,
	}, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize exports: %v", err)
	}
	return exports
}

func handleList(ctx context.Context, store storage.Store) {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No stored sessions")
		return
	}

	fmt.Printf("%-36s  %8s  %8s  %s\n", "SESSION", "PROBLEMS", "CORRECT", "UPDATED")
	for _, s := range sessions {
		fmt.Printf("%-36s  %8d  %8d  %s\n", s.SessionID, s.ProblemCount, s.CorrectCount, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func handleExport(ctx context.Context, store storage.Store, exports *service.ExportService, kind export.Kind, sessionID string) {
	ids := []string{sessionID}
	if sessionID == "" {
		sessions, err := store.ListSessions(ctx)
		if err != nil {
			log.Fatalf("Failed to list sessions: %v", err)
		}
		ids = ids[:0]
		for _, s := range sessions {
			ids = append(ids, s.SessionID)
		}
	}

	failed := 0
	for _, id := range ids {
		result, found, err := exports.DeliverSession(ctx, kind, id)
		switch {
		case err != nil:
			log.Printf("Export of session %s failed: %v", id, err)
			failed++
		case !found:
			log.Printf("Warning: session %s not found", id)
			failed++
		case result.Filename == "":
			log.Printf("Session %s has no completed problems, skipped", id)
		default:
			log.Printf("Exported session %s: file=%s s3=%s emailed=%v", id, result.Path, result.S3Key, result.Emailed)
		}
	}

	log.Printf("Export complete! %d sessions, %d failed", len(ids), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func handleDelete(ctx context.Context, store storage.Store, sessionID string) {
	fmt.Printf("WARNING: This will delete stored session %s. Type 'yes' to confirm: ", sessionID)
	var confirmation string
	fmt.Scanln(&confirmation)
	if confirmation != "yes" {
		log.Println("Delete cancelled")
		return
	}

	if err := store.ClearProgress(ctx, sessionID); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	log.Printf("Deleted session %s", sessionID)
}

func handleHashPassword(password string) {
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("Failed to read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		log.Fatal("Password must not be empty")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}

func printUsage() {
	fmt.Println("Relational Reasoning Study Export Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  export list                List stored sessions")
	fmt.Println("  export export [options]    Export stored sessions as CSV")
	fmt.Println("  export delete [options]    Delete a stored session")
	fmt.Println("  export hash-password       Print a bcrypt hash for RESEARCHER_PASSWORD_HASH")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -kind <kind>      aggregate or detailed (default: aggregate)")
	fmt.Println("  -session <id>     Session to export")
	fmt.Println("  -all              Export every stored session")
	fmt.Println("  -output <dir>     Output directory (default: EXPORT_DIR)")
	fmt.Println()
	fmt.Println("Delete Options:")
	fmt.Println("  -session <id>     Session to delete (required)")
	fmt.Println()
	fmt.Println("Hash Options:")
	fmt.Println("  -password <pw>    Password to hash (default: read from stdin)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  export export -all -kind detailed")
	fmt.Println("  export export -session 3f2c... -output ./out")
	fmt.Println("  export hash-password < secret.txt")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORAGE_DRIVER   memory, sqlite, postgres, mysql or redis (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./rrstudy.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  REDIS_URL        Redis connection URL")
	fmt.Println("  EXPORT_S3_BUCKET Upload exports to this S3 bucket")
	fmt.Println("  RESEARCHER_EMAIL Email exports to this address via SES")
}
