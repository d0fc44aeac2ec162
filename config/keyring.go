package config

import "github.com/zalando/go-keyring"

// keyringService namespaces mealpy entries in the system secret store.
const keyringService = "mealpal"

// PasswordFromKeyring looks up the stored password for an account.
func PasswordFromKeyring(email string) (string, error) {
	return keyring.Get(keyringService, email)
}

// SavePassword stores the password in the system secret store.
func SavePassword(email, password string) error {
	return keyring.Set(keyringService, email, password)
}

// DeletePassword removes a stored password, ignoring a missing entry.
func DeletePassword(email string) error {
	err := keyring.Delete(keyringService, email)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}
