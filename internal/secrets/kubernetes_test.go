package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func newTestScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	return scheme
}

func TestKubernetesProvider_GetSecret(t *testing.T) {
	t.Parallel()

	kubeClient := fake.NewClientBuilder().
		WithScheme(newTestScheme(t)).
		WithObjects(&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "api-creds", Namespace: "default"},
			Type:       corev1.SecretTypeOpaque,
			Data:       map[string][]byte{"token": []byte("Bearer test-token")},
		}).
		Build()

	p, err := NewKubernetesProvider(&KubernetesProviderConfig{Client: kubeClient})
	require.NoError(t, err)

	secret, err := p.GetSecret(context.Background(), "default", "api-creds")
	require.NoError(t, err)

	assert.Equal(t, corev1.SecretTypeOpaque, secret.Type)
	value, ok := secret.GetString("token")
	assert.True(t, ok)
	assert.Equal(t, "Bearer test-token", value)
}

func TestKubernetesProvider_PreservesSecretType(t *testing.T) {
	t.Parallel()

	kubeClient := fake.NewClientBuilder().
		WithScheme(newTestScheme(t)).
		WithObjects(&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "tls-cert", Namespace: "default"},
			Type:       corev1.SecretTypeTLS,
			Data: map[string][]byte{
				"tls.crt": []byte("cert"),
				"tls.key": []byte("key"),
			},
		}).
		Build()

	p, err := NewKubernetesProvider(&KubernetesProviderConfig{Client: kubeClient})
	require.NoError(t, err)

	secret, err := p.GetSecret(context.Background(), "default", "tls-cert")
	require.NoError(t, err)

	// The type passes through untouched; callers decide whether a
	// non-Opaque secret is usable.
	assert.Equal(t, corev1.SecretTypeTLS, secret.Type)
}

func TestKubernetesProvider_NotFound(t *testing.T) {
	t.Parallel()

	kubeClient := fake.NewClientBuilder().WithScheme(newTestScheme(t)).Build()

	p, err := NewKubernetesProvider(&KubernetesProviderConfig{Client: kubeClient})
	require.NoError(t, err)

	_, err = p.GetSecret(context.Background(), "default", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestKubernetesProvider_DefaultNamespace(t *testing.T) {
	t.Parallel()

	kubeClient := fake.NewClientBuilder().
		WithScheme(newTestScheme(t)).
		WithObjects(&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "creds", Namespace: "agents"},
			Type:       corev1.SecretTypeOpaque,
			Data:       map[string][]byte{"value": []byte("x")},
		}).
		Build()

	p, err := NewKubernetesProvider(&KubernetesProviderConfig{
		Client:           kubeClient,
		DefaultNamespace: "agents",
	})
	require.NoError(t, err)

	secret, err := p.GetSecret(context.Background(), "", "creds")
	require.NoError(t, err)
	assert.Equal(t, "agents", secret.Namespace)
}

func TestKubernetesProvider_RequiresClient(t *testing.T) {
	t.Parallel()

	_, err := NewKubernetesProvider(&KubernetesProviderConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestKubernetesProvider_HealthCheck(t *testing.T) {
	t.Parallel()

	kubeClient := fake.NewClientBuilder().WithScheme(newTestScheme(t)).Build()

	p, err := NewKubernetesProvider(&KubernetesProviderConfig{Client: kubeClient})
	require.NoError(t, err)

	assert.NoError(t, p.HealthCheck(context.Background()))
}
