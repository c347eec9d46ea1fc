package web

import "embed"

// Static embeds static assets served under /static/.
//
//go:embed static/**/*
var Static embed.FS
