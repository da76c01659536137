package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the account session",
	Long:  `Manage the account session with the haru server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the haru server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and wipe account data from this device",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the haru server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runStatus,
}

var serverCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Set the haru server URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runServer,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(serverCmd)
}

func promptCredentials(confirm bool) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", "", err
	}
	password := string(passwordBytes)
	fmt.Println()

	if confirm {
		fmt.Print("Confirm Password: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", "", err
		}
		fmt.Println()
		if password != string(confirmBytes) {
			return "", "", fmt.Errorf("passwords do not match")
		}
	}

	return email, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if user := app.Sessions.Current(); user != nil {
		fmt.Printf("Already logged in as %s. Run 'haru auth logout' first.\n", user.Email)
		return nil
	}

	email, password, err := promptCredentials(false)
	if err != nil {
		return err
	}

	fmt.Println("🔄 Logging in...")
	id, err := app.Client.Login(context.Background(), email, password)
	if err != nil {
		return err
	}

	// Notifies the store, which swaps in the account's todos
	app.Sessions.SetIdentity(&id)

	fmt.Printf("✅ Logged in as %s.\n", id.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if user := app.Sessions.Current(); user != nil {
		fmt.Printf("Already logged in as %s. Run 'haru auth logout' first.\n", user.Email)
		return nil
	}

	email, password, err := promptCredentials(true)
	if err != nil {
		return err
	}

	fmt.Println("🔄 Creating account...")
	id, err := app.Client.Register(context.Background(), email, password)
	if err != nil {
		return err
	}

	app.Sessions.SetIdentity(&id)

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Sessions.Current() == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	// Ends the server session and purges account todos from this device
	if err := app.Sessions.Logout(context.Background()); err != nil {
		return err
	}

	fmt.Println("✅ Logged out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Server: %s\n", app.Client.ServerURL())
	if user := app.Sessions.Current(); user != nil {
		fmt.Printf("Logged in as %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Println("Guest mode: todos live on this device only.")
	}
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	client, err := openApp()
	if err != nil {
		return err
	}
	defer client.Close()

	if client.Sessions.Current() != nil {
		return fmt.Errorf("log out before switching servers")
	}

	if err := client.Client.SetServer(args[0]); err != nil {
		return err
	}
	client.Config.ServerURL = args[0]
	if err := client.Config.Save(); err != nil {
		return err
	}

	fmt.Printf("Server set to %s\n", args[0])
	return nil
}
