package cmd

import "strings"

var confTempl = `
main:
  listen_port: 7074
  directory: /var/lib/robot-obo-tool
  auth_token: ${ROBOTOBO_AUTH_TOKEN}

robot:
  version: 1.9.8
  cache_dir: /var/cache/robot
  java_path: java
  download_timeout: 5m

log:
  level: info
  format: text
  add_source: true

metrics:
  enable: true

mirror:
  cron: "0 4 * * *"
  output_format: obo
  retention:
    enable: true
    keep_last: 3
  sources:
    - name: pato
      iri: https://purl.obolibrary.org/obo/pato.owl
      no_check: true
    - name: go
      iri: https://purl.obolibrary.org/obo/go.owl
      merge: true

storage:
  name: s3
  compression:
    algo: gzip
  encryption:
    algo: aes-256-gcm
    pass: ${ROBOTOBO_STORAGE_ENCRYPTION_PASS}
  sftp:
    host: sftp.example.com
    port: 22
    user: ${ROBOTOBO_SFTP_USER}
    pass: ${ROBOTOBO_SFTP_PASS}
    pkey_path: /home/user/.ssh/id_rsa
    pkey_pass: ${ROBOTOBO_SFTP_PKEY_PASS}
  s3:
    url: https://s3.example.com
    access_key_id: AKIAEXAMPLE
    secret_access_key: ${ROBOTOBO_S3_SECRET_ACCESS_KEY}
    bucket: ontology-mirrors
    region: us-east-1
    use_path_style: true
    disable_ssl: false
`

var confTemplServe = `
main:
  listen_port: 7074
  directory: /var/lib/robot-obo-tool
`

var confTemplMirror = `
main:
  directory: /var/lib/robot-obo-tool

mirror:
  cron: "0 4 * * *"
  sources:
    - name: pato
      iri: https://purl.obolibrary.org/obo/pato.owl
`

func GetConfigTemplateFull() string {
	return strings.TrimSpace(confTempl)
}

func GetConfigTemplateServe() string {
	return strings.TrimSpace(confTemplServe)
}

func GetConfigTemplateMirror() string {
	return strings.TrimSpace(confTemplMirror)
}
