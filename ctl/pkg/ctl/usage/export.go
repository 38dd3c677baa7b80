package usage

import (
	"fmt"

	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const metricsNamespace = "bootusage"

type ExportCfg struct {
	Profiles []string
	// Textfile is written atomically in the node exporter textfile collector format.
	Textfile string
}

type collectors struct {
	uniqueBytes   *prometheus.GaugeVec
	sharedBytes   *prometheus.GaugeVec
	current       *prometheus.GaugeVec
	bootFiles     *prometheus.GaugeVec
	storeBytes    *prometheus.GaugeVec
	orphanedBytes *prometheus.GaugeVec
}

func newCollectors(reg prometheus.Registerer) *collectors {
	c := &collectors{
		uniqueBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_unique_bytes",
			Help:      "Bytes in the kernels pseudo-store used only by this generation.",
		}, []string{"profile", "generation"}),
		sharedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_shared_bytes",
			Help:      "Bytes in the kernels pseudo-store this generation shares with others.",
		}, []string{"profile", "generation"}),
		current: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_current",
			Help:      "1 if the generation is the current generation of its profile.",
		}, []string{"profile", "generation"}),
		bootFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_boot_files",
			Help:      "Number of boot files the generation needs.",
		}, []string{"profile", "generation"}),
		storeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pseudo_store_bytes",
			Help:      "Bytes used by all files in a pseudo-store.",
		}, []string{"layout"}),
		orphanedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pseudo_store_orphaned_bytes",
			Help:      "Bytes used by files in a pseudo-store no generation of the exported profiles references.",
		}, []string{"layout"}),
	}
	reg.MustRegister(c.uniqueBytes, c.sharedBytes, c.current, c.bootFiles, c.storeBytes, c.orphanedBytes)
	return c
}

// Collect gathers the usage metrics of the given profiles into a new registry.
func Collect(env *config.Environment, profiles []string) (*prometheus.Registry, error) {
	if len(profiles) == 0 {
		profiles = []string{DefaultProfile}
	}
	reg := prometheus.NewRegistry()
	c := newCollectors(reg)

	referenced := make(map[string]bool)
	for _, name := range profiles {
		generations, err := GetGenerations(env, GenerationsCfg{Profile: name})
		if err != nil {
			return nil, fmt.Errorf("unable to inspect profile %q: %w", name, err)
		}
		for _, gen := range generations {
			c.uniqueBytes.WithLabelValues(name, gen.ID).Set(float64(gen.UniqueBytes))
			c.sharedBytes.WithLabelValues(name, gen.ID).Set(float64(gen.SharedBytes))
			c.bootFiles.WithLabelValues(name, gen.ID).Set(float64(len(gen.BootFiles)))
			isCurrent := 0.0
			if gen.Current {
				isCurrent = 1
			}
			c.current.WithLabelValues(name, gen.ID).Set(isCurrent)
			for _, f := range gen.BootFiles {
				referenced[f] = true
			}
		}
	}

	for _, store := range env.PseudoStores.Stores() {
		entries, err := store.Entries()
		if err != nil {
			return nil, err
		}
		var total, orphaned int64
		for _, entry := range entries {
			total += entry.Size
			if !referenced[entry.Name] {
				orphaned += entry.Size
			}
		}
		c.storeBytes.WithLabelValues(store.Layout).Set(float64(total))
		c.orphanedBytes.WithLabelValues(store.Layout).Set(float64(orphaned))
	}
	return reg, nil
}

// Export collects the usage metrics and writes them to cfg.Textfile.
func Export(env *config.Environment, cfg ExportCfg) error {
	reg, err := Collect(env, cfg.Profiles)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(cfg.Textfile, reg); err != nil {
		return fmt.Errorf("unable to write metrics to %q: %w", cfg.Textfile, err)
	}
	env.Logger.Info("exported usage metrics", zap.String("textfile", cfg.Textfile), zap.Strings("profiles", cfg.Profiles))
	return nil
}
