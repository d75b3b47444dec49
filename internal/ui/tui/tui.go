package tui

import (
	"github.com/PizzaHomicide/sociallogin/internal/config"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/service"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

func Run(cfg *config.Config) error {
	dispatcher := models.NewProgramDispatcher()

	loginService, err := service.NewLoginService(cfg, dispatcher)
	if err != nil {
		// Logins report the invalid url from the result view
		log.Error("Failed to create login service", "error", err)
		loginService = nil
	}

	p := tea.NewProgram(models.NewAppModel(cfg, loginService), tea.WithAltScreen())
	dispatcher.Attach(p)
	_, err = p.Run()
	return err
}
