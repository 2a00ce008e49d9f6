// SPDX-License-Identifier: BSD-3-Clause

// Package cert provides comprehensive X.509 certificate generation and management
// capabilities for TLS/SSL connections. It supports both self-signed certificates
// for development and testing environments, and Let's Encrypt ACME certificates
// for production use with automatic renewal.
//
// The package is designed with a flexible configuration system using the options
// pattern, allowing fine-grained control over certificate properties including
// subject information, alternative names, key sizes, validity periods, and
// certificate authority capabilities.
//
// # Certificate Types
//
// The package supports two primary certificate types:
//
//   - Self-signed certificates: Generated locally using Ed25519 key pairs, suitable
//     for development, testing, or isolated environments where certificate
//     authority validation is not required.
//
//   - Let's Encrypt certificates: Automatically obtained from Let's Encrypt
//     using the ACME protocol, providing trusted certificates for production
//     use with automatic renewal capabilities.
//
// # Basic Usage
//
// For simple self-signed certificate generation:
//
//	opts := cert.CertificateOptions{
//		Hostname:     "localhost",
//		Organization: "My Company",
//	}
//
//	certData, keyData, err := cert.GenerateSelfsigned(opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Use certData and keyData for TLS configuration
//
// For Let's Encrypt certificates:
//
//	cfg := cert.NewConfig(
//		cert.WithCertificateType(cert.CertificateTypeLetsEncrypt),
//		cert.WithHostname("example.com"),
//		cert.WithEmail("admin@example.com"),
//		cert.WithCacheDir("/var/cache/letsencrypt"),
//		cert.WithAcceptTOS(true),
//	)
//
//	tlsConfig, httpHandler, err := cert.GenerateAndSign(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Use tlsConfig for HTTPS server and httpHandler for ACME challenges
//
// # Advanced Configuration
//
// The package supports extensive customization through configuration options:
//
//	cfg := cert.NewConfig(
//		cert.WithCertificateType(cert.CertificateTypeSelfSigned),
//		cert.WithHostname("bmc.example.com"),
//		cert.WithAlternativeNames(
//			"bmc.local",
//			"192.168.1.100",
//			"fd12:3456:789a:1::100",
//		),
//		cert.WithOrganization("Hardware Management Corp"),
//		cert.WithOrganizationalUnit("Thermal Division"),
//		cert.WithCountry("US"),
//		cert.WithProvince("California"),
//		cert.WithLocality("San Francisco"),
//		cert.WithKeySize(4096),
//		cert.WithValidityPeriod(365*24*time.Hour), // 1 year
//		cert.WithIsCA(false),
//		cert.WithCertPath("/etc/ssl/certs/bmc.crt"),
//		cert.WithKeyPath("/etc/ssl/private/bmc.key"),
//	)
//
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
//
//	certData, keyData, err := cert.GenerateSelfsigned(cert.CertificateOptions{
//		Hostname:     cfg.Hostname,
//		Organization: cfg.Organization,
//		Country:      cfg.Country,
//		Province:     cfg.Province,
//		Locality:     cfg.Locality,
//		NotBefore:    time.Now(),
//		NotAfter:     time.Now().Add(cfg.ValidityPeriod),
//		IsCA:         cfg.IsCA,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Persistent Certificate Management
//
// For applications that need persistent certificates with automatic generation:
//
//	// This will load existing certificates or generate new ones if they don't exist
//	certData, keyData, err := cert.LoadOrGenerateCertificate(
//		"/var/lib/bmc/tls/cert.pem",
//		"/var/lib/bmc/tls/key.pem",
//		cert.CertificateOptions{Hostname: "bmc.local"},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Parse into tls.Certificate for use with HTTP servers
//	tlsCert, err := tls.X509KeyPair(certData, keyData)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	server := &http.Server{
//		Addr: ":8443",
//		TLSConfig: &tls.Config{
//			Certificates: []tls.Certificate{tlsCert},
//		},
//	}
//
// # Certificate Authority Usage
//
// The package can generate CA certificates for signing other certificates:
//
//	caOpts := cert.CertificateOptions{
//		Hostname:     "coolerd Root CA",
//		Organization: "Hardware Management Corp",
//		IsCA:         true,
//		NotBefore:    time.Now(),
//		NotAfter:     time.Now().Add(10 * 365 * 24 * time.Hour), // 10 years
//	}
//
//	caCertData, caKeyData, err := cert.GenerateSelfsigned(caOpts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// The CA certificate can now be used to sign other certificates
//
// # Error Handling
//
// The package defines specific error types for different failure scenarios:
//
//	tlsConfig, httpHandler, err := cert.GenerateAndSign(cfg)
//	if err != nil {
//		switch {
//		case errors.Is(err, cert.ErrInvalidEmail):
//			log.Printf("Invalid Let's Encrypt email: %v", err)
//		case errors.Is(err, cert.ErrCacheDirectory):
//			log.Printf("Missing cache directory: %v", err)
//		case errors.Is(err, cert.ErrInvalidCertificateOptions):
//			log.Printf("Configuration error: %v", err)
//		default:
//			log.Printf("Unexpected error: %v", err)
//		}
//		return
//	}
//
// # Security Considerations
//
// When using this package in production:
//
//   - Use RSA key sizes of at least 2048 bits (4096 bits recommended for CA certificates)
//   - Set appropriate file permissions (0600) for private key files
//   - Use Let's Encrypt certificates for public-facing services
//   - Regularly rotate certificates and monitor expiration dates
//   - Validate certificate configurations before use
//   - Store CA private keys securely and offline when possible
//
// # Integration with HTTP Servers
//
// Complete example of integrating with an HTTP server:
//
//	func setupHTTPSServer() error {
//		certData, keyData, err := cert.LoadOrGenerateCertificate(
//			"/var/lib/coolerd/tls/cert.pem",
//			"/var/lib/coolerd/tls/key.pem",
//			cert.CertificateOptions{
//				Hostname:     "bmc.local",
//				Organization: "coolerd Service",
//			},
//		)
//		if err != nil {
//			return fmt.Errorf("failed to get certificate: %w", err)
//		}
//
//		tlsCert, err := tls.X509KeyPair(certData, keyData)
//		if err != nil {
//			return fmt.Errorf("failed to parse certificate: %w", err)
//		}
//
//		mux := http.NewServeMux()
//		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
//			fmt.Fprintf(w, "Secure coolerd interface")
//		})
//
//		server := &http.Server{
//			Addr:    ":8443",
//			Handler: mux,
//			TLSConfig: &tls.Config{
//				Certificates: []tls.Certificate{tlsCert},
//				MinVersion:   tls.VersionTLS12,
//			},
//		}
//
//		log.Println("Starting HTTPS server on :8443")
//		return server.ListenAndServeTLS("", "")
//	}
package cert
