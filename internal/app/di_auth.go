package app

import (
	"fmt"

	authHTTP "github.com/allisson/gatekeeper/internal/auth/http"
	authRepository "github.com/allisson/gatekeeper/internal/auth/repository"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
)

// PasswordService returns the Argon2id password service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenCodec returns the session token codec bound to the signing key ring.
func (c *Container) TokenCodec() (authService.TokenCodec, error) {
	var err error
	c.tokenCodecInit.Do(func() {
		c.tokenCodec, err = c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// CaptchaService returns the captcha generator and answer hasher.
func (c *Container) CaptchaService() (authService.CaptchaService, error) {
	var err error
	c.captchaServiceInit.Do(func() {
		c.captchaService, err = c.initCaptchaService()
		if err != nil {
			c.initErrors["captchaService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["captchaService"]; exists {
		return nil, storedErr
	}
	return c.captchaService, nil
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	var err error
	c.userRepositoryInit.Do(func() {
		c.userRepository, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepository"]; exists {
		return nil, storedErr
	}
	return c.userRepository, nil
}

// SessionRepository returns the Redis session repository.
func (c *Container) SessionRepository() (authUseCase.SessionRepository, error) {
	var err error
	c.sessionRepositoryInit.Do(func() {
		c.sessionRepository, err = c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionRepository"]; exists {
		return nil, storedErr
	}
	return c.sessionRepository, nil
}

// CaptchaRepository returns the Redis captcha challenge repository.
func (c *Container) CaptchaRepository() (authUseCase.CaptchaRepository, error) {
	var err error
	c.captchaRepositoryInit.Do(func() {
		c.captchaRepository, err = c.initCaptchaRepository()
		if err != nil {
			c.initErrors["captchaRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["captchaRepository"]; exists {
		return nil, storedErr
	}
	return c.captchaRepository, nil
}

// CaptchaUseCase returns the captcha use case.
func (c *Container) CaptchaUseCase() (authUseCase.CaptchaUseCase, error) {
	var err error
	c.captchaUseCaseInit.Do(func() {
		c.captchaUseCase, err = c.initCaptchaUseCase()
		if err != nil {
			c.initErrors["captchaUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["captchaUseCase"]; exists {
		return nil, storedErr
	}
	return c.captchaUseCase, nil
}

// SessionUseCase returns the session use case.
func (c *Container) SessionUseCase() (authUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (authUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// CaptchaHandler returns the captcha HTTP handler.
func (c *Container) CaptchaHandler() (*authHTTP.CaptchaHandler, error) {
	captchaUseCase, err := c.CaptchaUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get captcha use case for captcha handler: %w", err)
	}
	return authHTTP.NewCaptchaHandler(captchaUseCase, c.Logger()), nil
}

// SessionHandler returns the session HTTP handler.
func (c *Container) SessionHandler() (*authHTTP.SessionHandler, error) {
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for session handler: %w", err)
	}
	return authHTTP.NewSessionHandler(sessionUseCase, c.Logger()), nil
}

// UserHandler returns the user HTTP handler.
func (c *Container) UserHandler() (*authHTTP.UserHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for user handler: %w", err)
	}
	return authHTTP.NewUserHandler(userUseCase, sessionUseCase, c.Logger()), nil
}

func (c *Container) initTokenCodec() (authService.TokenCodec, error) {
	ring, err := c.SigningKeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing keys for token codec: %w", err)
	}
	return authService.NewTokenCodec(ring), nil
}

func (c *Container) initCaptchaService() (authService.CaptchaService, error) {
	ring, err := c.SigningKeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing keys for captcha service: %w", err)
	}
	return authService.NewCaptchaService(ring), nil
}

// initUserRepository creates the user repository based on the database driver.
func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLUserRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initSessionRepository() (authUseCase.SessionRepository, error) {
	redisCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for session repository: %w", err)
	}
	return authRepository.NewRedisSessionRepository(redisCache), nil
}

func (c *Container) initCaptchaRepository() (authUseCase.CaptchaRepository, error) {
	redisCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for captcha repository: %w", err)
	}
	return authRepository.NewRedisCaptchaRepository(redisCache), nil
}

func (c *Container) initCaptchaUseCase() (authUseCase.CaptchaUseCase, error) {
	captchaRepository, err := c.CaptchaRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get captcha repository for captcha use case: %w", err)
	}

	captchaService, err := c.CaptchaService()
	if err != nil {
		return nil, fmt.Errorf("failed to get captcha service for captcha use case: %w", err)
	}

	baseUseCase := authUseCase.NewCaptchaUseCase(c.config, captchaRepository, captchaService, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for captcha use case: %w", err)
		}
		return authUseCase.NewCaptchaUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (authUseCase.SessionUseCase, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for session use case: %w", err)
	}

	sessionRepository, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for session use case: %w", err)
	}

	captchaUseCase, err := c.CaptchaUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get captcha use case for session use case: %w", err)
	}

	tokenCodec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for session use case: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for session use case: %w", err)
	}

	baseUseCase := authUseCase.NewSessionUseCase(
		c.config,
		userRepository,
		sessionRepository,
		captchaUseCase,
		c.PasswordService(),
		tokenCodec,
		dispatcher,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return authUseCase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initUserUseCase() (authUseCase.UserUseCase, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for user use case: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for user use case: %w", err)
	}

	baseUseCase := authUseCase.NewUserUseCase(
		c.config,
		userRepository,
		sessionUseCase,
		c.PasswordService(),
		dispatcher,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return authUseCase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
