// FilePath: cmd/sprout/cmd.plants.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plantsense/sprout/internal/models"
)

func (a *app) cmdPlants(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		plants, err := a.svc.Plants(ctx)
		if err != nil {
			return err
		}
		if len(plants) == 0 {
			fmt.Println("No plants yet")
			return nil
		}
		for _, plant := range plants {
			fmt.Printf("%-16s  %-20s  %s\n", plant.ID, plant.Name, plant.Species)
		}
		return nil

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: sprout plants get <id>")
		}
		plant, err := a.svc.Plant(ctx, args[1])
		if err != nil {
			return err
		}
		printPlant(plant)
		alerts, err := a.svc.PlantAlerts(ctx, plant.ID)
		if err == nil && len(alerts) > 0 {
			fmt.Println("Alerts:")
			for _, alert := range alerts {
				fmt.Printf("  [%s] %s: %s\n", alert.Type, alert.Title, alert.Message)
			}
		}
		return nil

	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: sprout plants create <name> <species> [description] [photo-file]")
		}
		user := a.svc.Session.User()
		if user == nil {
			return fmt.Errorf("not signed in")
		}
		data := models.PlantCreate{Name: args[1], Species: args[2], UserID: user.ID}
		if len(args) > 3 {
			data.Description = args[3]
		}

		if len(args) > 4 {
			photo, err := os.Open(args[4])
			if err != nil {
				return err
			}
			defer photo.Close()
			result, err := a.svc.CreatePlantWithPhoto(ctx, data, filepath.Base(args[4]), photo)
			if err != nil {
				return err
			}
			if result.UploadWarning != nil {
				fmt.Printf("Warning: photo upload failed: %v\n", result.UploadWarning)
			}
			fmt.Printf("Created plant %s\n", result.Plant.ID)
			return nil
		}

		plant, err := a.svc.CreatePlant(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("Created plant %s\n", plant.ID)
		return nil

	case "update":
		if len(args) < 4 {
			return fmt.Errorf("usage: sprout plants update <id> <name> <species> [description]")
		}
		data := models.PlantUpdate{Name: args[2], Species: args[3]}
		if len(args) > 4 {
			data.Description = args[4]
		}
		plant, err := a.svc.UpdatePlant(ctx, args[1], data)
		if err != nil {
			return err
		}
		printPlant(plant)
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: sprout plants delete <id>")
		}
		if err := a.svc.DeletePlant(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted")
		return nil

	case "photo":
		if len(args) != 3 {
			return fmt.Errorf("usage: sprout plants photo <id> <file>")
		}
		photo, err := os.Open(args[2])
		if err != nil {
			return err
		}
		defer photo.Close()
		plant, err := a.svc.UploadPlantPhoto(ctx, args[1], filepath.Base(args[2]), photo)
		if err != nil {
			return err
		}
		fmt.Printf("Photo attached to %s\n", plant.Name)
		return nil

	default:
		return fmt.Errorf("unknown plants subcommand %q", args[0])
	}
}

func printPlant(plant *models.Plant) {
	fmt.Printf("ID:      %s\nName:    %s\nSpecies: %s\n", plant.ID, plant.Name, plant.Species)
	if plant.Description != nil {
		fmt.Printf("Notes:   %s\n", *plant.Description)
	}
	if plant.PhotoFilename != nil {
		fmt.Printf("Photo:   %s\n", *plant.PhotoFilename)
	}
	fmt.Printf("Updated: %s\n", plant.UpdatedAt)
}
