// FilePath: cmd/sprout/cmd.auth.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/plantsense/sprout/internal/models"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: sprout login <email>")
	}

	password := os.Getenv("SPROUT_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	user, err := a.svc.Login(ctx, models.LoginCredentials{
		Email:    args[0],
		Password: password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: sprout register <email> <first> <last>")
	}

	password := os.Getenv("SPROUT_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	user, err := a.svc.Register(ctx, models.RegisterData{
		Email:     args[0],
		Password:  password,
		FirstName: args[1],
		LastName:  args[2],
	})
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s\n", user.FullName)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.svc.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	user := a.svc.Session.User()
	if user == nil || !a.svc.Session.IsAuthenticated() {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		user, err := a.svc.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Name:   %s\nEmail:  %s\nActive: %v\n", user.FullName, user.Email, user.IsActive)
		if user.ProfilePhotoURL != nil {
			fmt.Printf("Photo:  %s\n", *user.ProfilePhotoURL)
		}
		return nil
	}

	switch args[0] {
	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: sprout profile update <first> <last>")
		}
		user, err := a.svc.UpdateProfile(ctx, models.UserUpdate{
			FirstName: &args[1],
			LastName:  &args[2],
		})
		if err != nil {
			return err
		}
		fmt.Printf("Profile updated: %s\n", user.FullName)
		return nil
	case "photo":
		if len(args) != 2 {
			return fmt.Errorf("usage: sprout profile photo <file>")
		}
		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()
		if _, err := a.svc.UploadProfilePhoto(ctx, file.Name(), file); err != nil {
			return err
		}
		fmt.Println("Profile photo updated")
		return nil
	default:
		return fmt.Errorf("unknown profile subcommand %q", args[0])
	}
}
