package models

import (
	"context"
	"errors"

	"github.com/PizzaHomicide/sociallogin/internal/auth"
	"github.com/PizzaHomicide/sociallogin/internal/config"
	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/service"
	kb "github.com/PizzaHomicide/sociallogin/internal/ui/tui/keybindings"
	tea "github.com/charmbracelet/bubbletea"
)

// errLoginCancelled is reported when the user backs out of a pending exchange
var errLoginCancelled = errors.New("login cancelled")

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	config        *config.Config
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int

	// Models used for various views
	providerSelectModel *ProviderSelectModel
	credentialsModel    *CredentialsModel
	loadingModel        *LoadingModel
	resultModel         *ResultModel
	helpModel           *HelpModel

	loginService *service.LoginService
	// inbox receives messages from login callbacks, which run inside Update via DispatchMsg
	inbox *inbox
	// Cancels the in-flight exchange or browser login, if any
	cancelLogin   context.CancelFunc
	cancelBrowser context.CancelFunc
	// Every login gets a new id.  Only the result carrying pendingLogin is shown; zero means none is expected.
	loginSeq     int
	pendingLogin int
	// Persist tokens after a successful login.  Replaced in tests.
	saveTokens  func(domain.SocialProvider, domain.LoginResult) error
	clearTokens func() error
}

// NewAppModel creates a new instance of the main application model.  loginService may be nil when the API URL is
// unusable, in which case every login fails with serviceErr.
func NewAppModel(cfg *config.Config, loginService *service.LoginService) AppModel {
	m := AppModel{
		config:              cfg,
		activeView:          ViewProviderSelect,
		activeModal:         ModalNone,
		providerSelectModel: NewProviderSelectModel(),
		credentialsModel:    NewCredentialsModel(),
		loadingModel:        NewLoadingModel("Exchanging credential"),
		resultModel:         NewResultModel(),
		helpModel:           NewHelpModel(),
		loginService:        loginService,
		inbox:               &inbox{},
		saveTokens:          service.SaveTokens,
		clearTokens:         service.ClearTokens,
	}

	if cfg.Auth.AccessToken != "" {
		log.Info("Tokens found in config file", "provider", cfg.Auth.Provider)
		provider, err := domain.ParseSocialProvider(cfg.Auth.Provider)
		if err != nil {
			log.Warn("Stored tokens have an unknown provider", "provider", cfg.Auth.Provider)
		}
		m.resultModel.SetResult(provider, domain.LoginResult{
			AccessToken:  cfg.Auth.AccessToken,
			RefreshToken: cfg.Auth.RefreshToken,
		}, true)
		m.activeView = ViewResult
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising sociallogin TUI", "login_url", m.config.LoginURL())
	return m.providerSelectModel.Init()
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			m.cancelPending()
			return m, tea.Quit
		case kb.ActionLogout:
			return m.logout()
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			// Disable/toggle modal if one already active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			return m.back()
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.providerSelectModel.Resize(msg.Width, msg.Height)
		m.credentialsModel.Resize(msg.Width, msg.Height)
		m.loadingModel.Resize(msg.Width, msg.Height)
		m.resultModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		return m, nil

	case DispatchMsg:
		msg.fn()
		return m.processInbox()

	case ProviderSelectedMsg:
		log.Info("Provider selected", "provider", msg.Provider)
		m.activeView = ViewCredentials
		return m, m.credentialsModel.SetProvider(msg.Provider)

	case CredentialSubmittedMsg:
		return m.startLogin(msg.Provider, msg.Payload)

	case LoginCompletedMsg:
		return m.finishLogin(msg)

	case BrowserLoginRequestedMsg:
		return m, m.startBrowserLogin(msg.Provider)

	case BrowserLoginStartedMsg:
		log.Info("Waiting for provider redirect", "provider", msg.Provider)
		m.credentialsModel.SetBrowserURL(msg.URL)
		ctx, cancel := context.WithCancel(context.Background())
		m.cancelBrowser = cancel
		return m, waitForBrowserCode(ctx, msg.Provider, msg.auth)

	case BrowserCodeReceivedMsg:
		m.cancelBrowser = nil
		m.credentialsModel.SetBrowserURL("")
		if m.activeView != ViewCredentials || m.credentialsModel.Provider() != msg.Provider {
			log.Debug("Ignoring authorization code for an abandoned browser login", "provider", msg.Provider)
			return m, nil
		}
		return m.startLogin(msg.Provider, domain.AuthorizationCode(msg.Code))

	case BrowserLoginFailedMsg:
		m.cancelBrowser = nil
		m.credentialsModel.SetBrowserURL("")
		if !errors.Is(msg.Error, context.Canceled) {
			log.Warn("Browser login failed", "provider", msg.Provider, "error", msg.Error)
			m.credentialsModel.SetError(msg.Error)
		}
		return m, nil
	}

	// Prioritise delegating messages to a modal if one is active
	if m.activeModal == ModalHelp {
		model, cmd := m.helpModel.Update(msg)
		m.helpModel = model.(*HelpModel)
		return m, cmd
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewProviderSelect:
		model, cmd := m.providerSelectModel.Update(msg)
		m.providerSelectModel = model.(*ProviderSelectModel)
		return m, cmd
	case ViewCredentials:
		model, cmd := m.credentialsModel.Update(msg)
		m.credentialsModel = model.(*CredentialsModel)
		return m, cmd
	case ViewLoading:
		model, cmd := m.loadingModel.Update(msg)
		m.loadingModel = model.(*LoadingModel)
		return m, cmd
	case ViewResult:
		return m.updateResultView(msg)
	}

	return m, nil
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	if m.activeModal == ModalHelp {
		return m.helpModel.View()
	}

	switch m.activeView {
	case ViewProviderSelect:
		return m.providerSelectModel.View()
	case ViewCredentials:
		return m.credentialsModel.View()
	case ViewLoading:
		return m.loadingModel.View()
	case ViewResult:
		return m.resultModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

// processInbox feeds messages queued by a dispatched callback back through Update
func (m AppModel) processInbox() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var model tea.Model = m
	for _, queued := range m.inbox.drain() {
		var cmd tea.Cmd
		model, cmd = model.Update(queued)
		cmds = append(cmds, cmd)
	}
	return model, tea.Batch(cmds...)
}

func (m AppModel) startLogin(provider domain.SocialProvider, payload domain.AuthorizationPayload) (tea.Model, tea.Cmd) {
	if m.loginService == nil {
		m.loginSeq++
		m.pendingLogin = m.loginSeq
		return m.finishLogin(LoginCompletedMsg{
			loginID:  m.loginSeq,
			Provider: provider,
			Result:   domain.LoginResult{Err: errors.New("the API url in the config file is invalid")},
		})
	}

	log.Info("Submitting credential", "provider", provider, "payload", payload.Kind())
	if m.cancelLogin != nil {
		m.cancelLogin()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelLogin = cancel
	m.loginSeq++
	m.pendingLogin = m.loginSeq
	loginID := m.loginSeq

	m.loadingModel = NewLoadingModel("Exchanging "+payload.Kind().String()).
		WithTitle(provider.DisplayName()+" login").
		WithContextInfo(m.loginService.LoginURL().String())
	m.loadingModel.Resize(m.width, m.height)
	m.activeView = ViewLoading

	svc := m.loginService
	box := m.inbox
	login := func() tea.Msg {
		// The callback is posted to the program's dispatcher, so it runs within Update
		svc.Login(ctx, provider, payload, func(accessToken, refreshToken string, err error) {
			box.push(LoginCompletedMsg{
				loginID:  loginID,
				Provider: provider,
				Result:   domain.LoginResult{AccessToken: accessToken, RefreshToken: refreshToken, Err: err},
			})
		})
		return nil
	}
	return m, tea.Batch(m.loadingModel.Init(), login)
}

func (m AppModel) finishLogin(msg LoginCompletedMsg) (tea.Model, tea.Cmd) {
	if msg.loginID == 0 || msg.loginID != m.pendingLogin {
		log.Debug("Ignoring result of an abandoned login", "provider", msg.Provider, "login_id", msg.loginID,
			"pending_login_id", m.pendingLogin)
		return m, nil
	}
	m.pendingLogin = 0

	if m.cancelLogin != nil {
		m.cancelLogin()
		m.cancelLogin = nil
	}

	if errors.Is(msg.Result.Err, context.Canceled) {
		msg.Result.Err = errLoginCancelled
	}

	if msg.Result.Succeeded() {
		log.Info("Login succeeded", "provider", msg.Provider, "elapsed", m.loadingModel.GetElapsedTime(),
			"refresh_token", msg.Result.RefreshToken != "")
		m.config.Auth.Provider = msg.Provider.String()
		m.config.Auth.AccessToken = msg.Result.AccessToken
		m.config.Auth.RefreshToken = msg.Result.RefreshToken
		if err := m.saveTokens(msg.Provider, msg.Result); err != nil {
			log.Warn("Error saving tokens to config.  They will not be available next time", "error", err)
		}
	} else {
		log.Error("Login failed", "provider", msg.Provider, "error", msg.Result.Err)
	}

	m.resultModel.SetResult(msg.Provider, msg.Result, false)
	m.activeView = ViewResult
	return m, nil
}

func (m AppModel) startBrowserLogin(provider domain.SocialProvider) tea.Cmd {
	providerCfg := m.config.Provider(provider.String())
	port := m.config.Auth.CallbackPort
	return func() tea.Msg {
		a, err := auth.NewAuth(provider, providerCfg.ClientID, providerCfg.Scopes, port)
		if err != nil {
			return BrowserLoginFailedMsg{Provider: provider, Error: err}
		}
		// The code is waited for separately so the URL can be shown first
		if err := a.Start(); err != nil {
			return BrowserLoginFailedMsg{Provider: provider, Error: err}
		}
		return BrowserLoginStartedMsg{Provider: provider, URL: a.LoginURL.String(), auth: a}
	}
}

func waitForBrowserCode(ctx context.Context, provider domain.SocialProvider, a *auth.Auth) tea.Cmd {
	return func() tea.Msg {
		result := a.Wait(ctx)
		if result.Error != nil {
			return BrowserLoginFailedMsg{Provider: provider, Error: result.Error}
		}
		return BrowserCodeReceivedMsg{Provider: provider, Code: result.Code}
	}
}

func (m AppModel) updateResultView(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && kb.GetActionByKey(keyMsg, kb.ContextResult) == kb.ActionNewLogin {
		log.Debug("Starting a new login")
		m.providerSelectModel.Reset()
		m.activeView = ViewProviderSelect
		return m, nil
	}
	model, cmd := m.resultModel.Update(msg)
	m.resultModel = model.(*ResultModel)
	return m, cmd
}

func (m AppModel) back() (tea.Model, tea.Cmd) {
	if m.activeModal != ModalNone {
		m.activeModal = ModalNone
		return m, nil
	}

	switch m.activeView {
	case ViewCredentials:
		m.cancelPending()
		m.cancelBrowser = nil
		m.providerSelectModel.Reset()
		m.activeView = ViewProviderSelect
	case ViewLoading:
		// The exchange fails with a cancellation error, which lands on the result view
		log.Info("Cancelling login")
		if m.cancelLogin != nil {
			m.cancelLogin()
		}
	case ViewResult:
		m.providerSelectModel.Reset()
		m.activeView = ViewProviderSelect
	}
	return m, nil
}

func (m AppModel) logout() (tea.Model, tea.Cmd) {
	log.Info("Logging out.  Cleaning up tokens from config file...")
	m.cancelPending()
	m.cancelLogin = nil
	m.cancelBrowser = nil
	m.pendingLogin = 0
	if m.loginService != nil {
		if err := m.loginService.ResetSession(); err != nil {
			log.Warn("Error resetting API session", "error", err)
		}
	}
	m.config.Auth.Provider = ""
	m.config.Auth.AccessToken = ""
	m.config.Auth.RefreshToken = ""
	if err := m.clearTokens(); err != nil {
		log.Warn("Error clearing tokens from config", "error", err)
	}

	// Throw back to provider selection
	m.providerSelectModel.Reset()
	m.activeModal = ModalNone
	m.activeView = ViewProviderSelect
	return m, nil
}

func (m AppModel) cancelPending() {
	if m.cancelLogin != nil {
		m.cancelLogin()
	}
	if m.cancelBrowser != nil {
		m.cancelBrowser()
	}
}
