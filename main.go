package main

import (
	"embed"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/murmur/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	svc := app.New(version)

	wapp := application.New(application.Options{
		Name:        "Murmur",
		Description: "Push-to-talk dictation",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// Settings/history window, hidden until opened from the tray
	mainWindow := wapp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Murmur",
		Width:  480,
		Height: 640,
		URL:    "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
		Hidden: true,
	})

	// Intercept window close: hide instead of destroy so tray can reopen
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		mainWindow.Hide()
	})

	// Initialize service with app and window references
	svc.Init(wapp, mainWindow)

	// Setup system tray
	systemTray := wapp.SystemTray.New()
	systemTray.SetLabel("Murmur")

	trayMenu := wapp.NewMenu()
	trayMenu.Add("Toggle Dictation").OnClick(func(ctx *application.Context) {
		svc.ToggleDictation()
	})
	trayMenu.Add("Cancel Recording").OnClick(func(ctx *application.Context) {
		svc.CancelDictation()
	})
	trayMenu.AddSeparator()
	trayMenu.Add("Settings...").OnClick(func(ctx *application.Context) {
		mainWindow.Show()
		mainWindow.Focus()
	})
	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			svc.Shutdown()
			wapp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	if err := wapp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
