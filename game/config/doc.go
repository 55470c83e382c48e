// Package config manages the scenario files of FogQuest.
//
// A scenario is an engine.GameConfig stored as YAML (.yaml, .yml) or JSON (.json)
// in a config directory. It names the map size, the number of power-ups and
// monsters, the tile weights used for generation, the starting resource and the
// agents taking part. Setting map_file plays a saved map instead of generating one;
// relative map paths are resolved against the config directory.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	duel, err := manager.LoadConfig("duel")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default scenario is default.yaml when present, otherwise the first valid file,
// otherwise engine.DefaultGameConfig.
package config
