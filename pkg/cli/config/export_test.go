package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, notifyChannel, channelPrefix string) *Slack {
	return &Slack{
		botToken:      botToken,
		notifyChannel: notifyChannel,
		channelPrefix: channelPrefix,
	}
}

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket, dir string) *Storage {
	return &Storage{
		backend: backend,
		bucket:  bucket,
		dir:     dir,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(issuer, clientID, clientSecret, callbackURL string, noAuthn bool) *Auth {
	return &Auth{
		issuer:       issuer,
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		noAuthn:      noAuthn,
	}
}

// NewGitHubForTest creates a GitHub config for testing purposes
func NewGitHubForTest(appID, installationID int, privateKey, repo, label string) *GitHub {
	return &GitHub{
		appID:          appID,
		installationID: installationID,
		privateKey:     privateKey,
		repo:           repo,
		label:          label,
	}
}

// NewNotionForTest creates a Notion config for testing purposes
func NewNotionForTest(token, databaseID string) *Notion {
	return &Notion{
		token:      token,
		databaseID: databaseID,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{
		backend: backend,
	}
}
