// FilePath: cmd/sprout/cmd.devices.go
package main

import (
	"context"
	"fmt"

	"github.com/plantsense/sprout/internal/models"
)

func (a *app) cmdDevices(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		devices, err := a.svc.Devices(ctx)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices yet")
			return nil
		}
		for _, device := range devices {
			version := "-"
			if device.Version != nil {
				version = *device.Version
			}
			fmt.Printf("%-16s  %-20s  %-16s  %s\n", device.ID, device.Name, device.Category, version)
		}
		return nil

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: sprout devices get <id>")
		}
		device, err := a.svc.Device(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("ID:       %s\nName:     %s\nCategory: %s\n", device.ID, device.Name, device.Category)
		if device.Description != nil {
			fmt.Printf("Notes:    %s\n", *device.Description)
		}
		return nil

	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: sprout devices create <name> <microcontroller|sensor> [description]")
		}
		category := models.DeviceCategory(args[2])
		if !category.Valid() {
			return fmt.Errorf("invalid category %q", args[2])
		}
		data := models.DeviceCreate{Name: args[1], Category: category}
		if len(args) > 3 {
			data.Description = args[3]
		}
		device, err := a.svc.CreateDevice(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("Created device %s\n", device.ID)
		return nil

	case "update":
		if len(args) < 3 {
			return fmt.Errorf("usage: sprout devices update <id> <name> [description]")
		}
		data := models.DeviceUpdate{Name: args[2]}
		if len(args) > 3 {
			data.Description = args[3]
		}
		device, err := a.svc.UpdateDevice(ctx, args[1], data)
		if err != nil {
			return err
		}
		fmt.Printf("Updated device %s\n", device.Name)
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: sprout devices delete <id>")
		}
		if err := a.svc.DeleteDevice(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted")
		return nil

	default:
		return fmt.Errorf("unknown devices subcommand %q", args[0])
	}
}
