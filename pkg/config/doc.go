// Package config loads hidefolder's runtime options: the host selectors, the
// container acquisition bounds, filesystem watch tuning, where settings are
// persisted, and the output format.
//
// Sources are merged in order, later ones winning:
//
//  1. embedded/defaults.toml
//  2. the user config file (--config, or config.toml / config.yaml in the
//     XDG config dir)
//  3. HIDEFOLDER_* environment variables, with "__" separating sections
//     from keys: HIDEFOLDER_ACQUIRE__MAX_ATTEMPTS=5
//
// Runtime options are distinct from the user's folder rules, which live in
// pkg/settings.
package config
