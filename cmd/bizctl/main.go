package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/biasharahq/platform/internal/bizctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		file := fs.String("f", "", "Path to activation definition YAML file (required)")
		timeout := fs.Duration("timeout", 10*time.Minute, "Timeout per workspace activation")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		if err := bizctl.Apply(*file, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "activate":
		fs := flag.NewFlagSet("activate", flag.ExitOnError)
		apiURL := fs.String("api", "http://localhost:8090", "Core API base URL")
		workspaceType := fs.String("workspace-type", "", "Workspace type (STARTUP, SME, ENTERPRISE, SACCO)")
		template := fs.String("template", "", "Template code override")
		modulesFlag := fs.String("modules", "", "Comma-separated module codes override")
		timeout := fs.Duration("timeout", 10*time.Minute, "Timeout for the activation")
		fs.Parse(os.Args[2:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: bizctl activate [flags] <tenant-id>")
			os.Exit(1)
		}

		ws := bizctl.WorkspaceDef{
			WorkspaceType: *workspaceType,
			Template:      *template,
		}
		if *modulesFlag != "" {
			ws.Modules = strings.Split(*modulesFlag, ",")
		}

		client := bizctl.NewClient(*apiURL, apiKeyFromEnv())
		if err := bizctl.Activate(client, fs.Arg(0), ws, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		apiURL := fs.String("api", "http://localhost:8090", "Core API base URL")
		wait := fs.Bool("wait", false, "Poll until the process reaches a terminal status")
		timeout := fs.Duration("timeout", 10*time.Minute, "Timeout when waiting")
		fs.Parse(os.Args[2:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: bizctl status [flags] <tenant-id>")
			os.Exit(1)
		}

		client := bizctl.NewClient(*apiURL, apiKeyFromEnv())
		var st *bizctl.OnboardingStatus
		var err error
		if *wait {
			st, err = client.WaitForCompletion(fs.Arg(0), *timeout)
		} else {
			st, err = client.Status(fs.Arg(0))
		}
		if st != nil {
			printStatus(st)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "retry":
		fs := flag.NewFlagSet("retry", flag.ExitOnError)
		apiURL := fs.String("api", "http://localhost:8090", "Core API base URL")
		fs.Parse(os.Args[2:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: bizctl retry [flags] <tenant-id>")
			os.Exit(1)
		}

		client := bizctl.NewClient(*apiURL, apiKeyFromEnv())
		resp, err := client.Post(fmt.Sprintf("/tenants/%s/provisioning/retry", fs.Arg(0)), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(resp.Body))

	case "skip-step":
		fs := flag.NewFlagSet("skip-step", flag.ExitOnError)
		apiURL := fs.String("api", "http://localhost:8090", "Core API base URL")
		fs.Parse(os.Args[2:])

		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: bizctl skip-step [flags] <tenant-id> <step>")
			os.Exit(1)
		}

		client := bizctl.NewClient(*apiURL, apiKeyFromEnv())
		_, err := client.Post(fmt.Sprintf("/tenants/%s/provisioning/skip-step", fs.Arg(0)), map[string]any{
			"step": fs.Arg(1),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Step %q marked skipped for tenant %s\n", fs.Arg(1), fs.Arg(0))

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func apiKeyFromEnv() string {
	return os.Getenv("PLATFORM_API_KEY")
}

func printStatus(st *bizctl.OnboardingStatus) {
	fmt.Printf("Tenant:    %s\n", st.TenantID)
	fmt.Printf("Status:    %s\n", st.Status)
	if st.Template != "" {
		fmt.Printf("Template:  %s (engine %s)\n", st.Template, st.Engine)
	}
	fmt.Printf("Progress:  %.0f%% (%d completed, %d skipped of %d)\n",
		st.Progress, st.CompletedSteps, st.SkippedSteps, st.TotalSteps)
	if st.CurrentStep != nil {
		fmt.Printf("Next step: %s\n", *st.CurrentStep)
	}
	if st.Error != nil {
		fmt.Printf("Error:     %s\n", *st.Error)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  bizctl apply -f <activation.yaml>
  bizctl activate [flags] <tenant-id>
  bizctl status [flags] <tenant-id>
  bizctl retry [flags] <tenant-id>
  bizctl skip-step [flags] <tenant-id> <step>

Commands:
  apply       Activate a YAML batch of workspaces (create tenants, drive onboarding)
  activate    Drive onboarding for one existing tenant to completion
  status      Show (or wait for) a tenant's onboarding status
  retry       Re-run the provisioning sequence after a failure
  skip-step   Permanently skip an optional provisioning step

Flags:
  -f string         Path to YAML activation file (apply)
  -api string       Core API base URL (default: http://localhost:8090)
  -timeout duration Timeout for activation/waiting (default: 10m)

The API key is read from api_key in the YAML file or the PLATFORM_API_KEY
environment variable.`)
}
